package database

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	joinCodeLength = 8
	// joinCodeRetries bounds collision retries on the unique join_code
	// constraint. Collisions on an 8-hex-char code are negligible, so
	// exhausting the retries indicates something else is wrong.
	joinCodeRetries = 5

	addMemberQuery = "INSERT INTO room_members (room_id, user_id, created_at) VALUES ($1, $2, $3)"
)

// newJoinCode returns an opaque 8-character invite code. Codes are
// capability tokens for joining, not secrets, and are stored unhashed.
func newJoinCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:joinCodeLength]
}

func (db *PgRoomChatRepository) CreateAccount(params CreateAccountParams) (User, error) {
	res := db.conn.QueryRow(
		"INSERT INTO users (username, email, password_hash, role, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, username, email, role, created_at",
		params.Username,
		params.Email,
		params.PasswordHash,
		params.Role,
		time.Now().UTC(),
	)

	var u User
	err := res.Scan(
		&u.Id,
		&u.Username,
		&u.Email,
		&u.Role,
		&u.CreatedAt,
	)

	return u, translateErr(err)
}

func (db *PgRoomChatRepository) GetAccountById(accountId int) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, role, created_at FROM users "+
			"WHERE id = $1 LIMIT 1",
		accountId,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)

	return user, translateErr(err)
}

func (db *PgRoomChatRepository) GetAccountByEmail(email string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, password_hash, role, created_at FROM users "+
			"WHERE email = $1 LIMIT 1",
		email,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)

	return user, translateErr(err)
}

func (db *PgRoomChatRepository) GetAccountByUsername(username string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, email, role, created_at FROM users "+
			"WHERE username = $1 LIMIT 1",
		username,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
	)

	return user, translateErr(err)
}

func (db *PgRoomChatRepository) CreateRoom(params CreateRoomParams) (Room, error) {
	var room Room
	var err error
	for attempt := 0; attempt < joinCodeRetries; attempt++ {
		room, err = db.createRoomWithCode(params, newJoinCode())
		if !errors.Is(err, ErrDuplicate) {
			break
		}
	}

	return room, err
}

func (db *PgRoomChatRepository) createRoomWithCode(params CreateRoomParams, joinCode string) (Room, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return Room{}, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	res := tx.QueryRow(
		"INSERT INTO rooms (name, owner_id, visibility, join_code, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) RETURNING id, name, owner_id, visibility, join_code, created_at",
		params.Name,
		params.OwnerId,
		params.Visibility,
		joinCode,
		time.Now().UTC(),
	)

	var room Room
	err = res.Scan(
		&room.Id,
		&room.Name,
		&room.OwnerId,
		&room.Visibility,
		&room.JoinCode,
		&room.CreatedAt,
	)
	if err != nil {
		return Room{}, translateErr(err)
	}

	if params.AdmitOwner {
		if _, err = tx.Exec(addMemberQuery, room.Id, params.OwnerId, time.Now().UTC()); err != nil {
			return Room{}, translateErr(err)
		}
	}

	if err = tx.Commit(); err != nil {
		return Room{}, err
	}

	return room, nil
}

func (db *PgRoomChatRepository) GetRoomById(roomId int) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, owner_id, visibility, join_code, created_at FROM rooms "+
			"WHERE id = $1 LIMIT 1",
		roomId,
	)

	return scanRoom(row)
}

func (db *PgRoomChatRepository) GetRoomByJoinCode(joinCode string) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, owner_id, visibility, join_code, created_at FROM rooms "+
			"WHERE join_code = $1 LIMIT 1",
		joinCode,
	)

	return scanRoom(row)
}

func scanRoom(row *sql.Row) (Room, error) {
	var room Room
	err := row.Scan(
		&room.Id,
		&room.Name,
		&room.OwnerId,
		&room.Visibility,
		&room.JoinCode,
		&room.CreatedAt,
	)

	return room, translateErr(err)
}

// ListVisibleRooms returns every PUBLIC room plus the PRIVATE rooms the
// user owns or belongs to.
func (db *PgRoomChatRepository) ListVisibleRooms(userId int) ([]Room, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, owner_id, visibility, join_code, created_at FROM rooms "+
			"WHERE visibility = 'PUBLIC' OR owner_id = $1 "+
			"OR id IN (SELECT room_id FROM room_members WHERE user_id = $1) "+
			"ORDER BY id",
		userId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rooms = make([]Room, 0)
	for rows.Next() {
		var room Room
		if err = rows.Scan(&room.Id, &room.Name, &room.OwnerId, &room.Visibility, &room.JoinCode, &room.CreatedAt); err != nil {
			return nil, err
		}

		rooms = append(rooms, room)
	}

	return rooms, rows.Err()
}

func (db *PgRoomChatRepository) ListRoomMembers(roomId int) ([]User, error) {
	if _, err := db.GetRoomById(roomId); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query(
		"SELECT u.id, u.username, u.email, u.role FROM room_members AS m "+
			"JOIN users AS u ON m.user_id = u.id WHERE m.room_id = $1 ORDER BY m.created_at, u.id",
		roomId,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members = make([]User, 0)
	for rows.Next() {
		var member User
		if err = rows.Scan(&member.Id, &member.Username, &member.Email, &member.Role); err != nil {
			return nil, err
		}

		members = append(members, member)
	}

	return members, rows.Err()
}

// JoinRoomByCode resolves the code and appends the user to the member set.
// It returns the room and the members as they were before the join so the
// caller can notify the pre-existing members.
func (db *PgRoomChatRepository) JoinRoomByCode(userId int, joinCode string) (JoinResult, Room, []User, error) {
	room, err := db.GetRoomByJoinCode(joinCode)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return NoSuchCode, Room{}, nil, nil
		}
		return 0, Room{}, nil, err
	}

	members, err := db.ListRoomMembers(room.Id)
	if err != nil {
		return 0, Room{}, nil, err
	}

	for _, m := range members {
		if m.Id == userId {
			return AlreadyMember, room, members, nil
		}
	}

	if _, err := db.conn.Exec(addMemberQuery, room.Id, userId, time.Now().UTC()); err != nil {
		// a concurrent join for the same pair lost the race
		if errors.Is(translateErr(err), ErrDuplicate) {
			return AlreadyMember, room, members, nil
		}
		return 0, Room{}, nil, translateErr(err)
	}

	return Joined, room, members, nil
}

func (db *PgRoomChatRepository) RemoveRoomMember(roomId, userId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM room_members WHERE room_id = $1 AND user_id = $2",
		roomId,
		userId,
	)
	if err != nil {
		return translateErr(err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteRoom removes the room and every dependent record in one
// transaction. Dependent link tables are cleared before their parents so
// no dangling references survive: post likes, comments, posts, member
// edges, messages, then the room itself.
func (db *PgRoomChatRepository) DeleteRoom(roomId int) error {
	if _, err := db.GetRoomById(roomId); err != nil {
		return err
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	stmts := []string{
		"DELETE FROM post_likes WHERE post_id IN (SELECT id FROM posts WHERE room_id = $1)",
		"DELETE FROM comments WHERE post_id IN (SELECT id FROM posts WHERE room_id = $1)",
		"DELETE FROM posts WHERE room_id = $1",
		"DELETE FROM room_members WHERE room_id = $1",
		"DELETE FROM messages WHERE room_id = $1",
		"DELETE FROM rooms WHERE id = $1",
	}

	for _, stmt := range stmts {
		if _, err = tx.Exec(stmt, roomId); err != nil {
			return fmt.Errorf("delete room %d: %w", roomId, err)
		}
	}

	return tx.Commit()
}
