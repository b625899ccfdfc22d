package database

import (
	"database/sql"
	"time"
)

// CreateMessage persists a chat message, assigning its identifier and the
// server-side send timestamp. The stored record is returned.
func (db *PgRoomChatRepository) CreateMessage(msg Message) (Message, error) {
	res := db.conn.QueryRow(
		"INSERT INTO messages (room_id, sender_id, content, sent_at) "+
			"VALUES ($1, $2, $3, $4) RETURNING id, room_id, sender_id, content, sent_at",
		msg.RoomId,
		msg.SenderId,
		msg.Content,
		time.Now().UTC(),
	)

	var saved Message
	err := res.Scan(
		&saved.Id,
		&saved.RoomId,
		&saved.SenderId,
		&saved.Content,
		&saved.SentAt,
	)

	return saved, translateErr(err)
}

// GetRoomMessages returns the room's full history in ascending send-time
// order, ties broken by identifier.
func (db *PgRoomChatRepository) GetRoomMessages(roomId int) ([]Message, error) {
	return db.queryMessages(
		"SELECT id, room_id, sender_id, content, sent_at FROM messages "+
			"WHERE room_id = $1 ORDER BY sent_at, id",
		roomId,
	)
}

func (db *PgRoomChatRepository) GetMessagesBySender(senderId int) ([]Message, error) {
	return db.queryMessages(
		"SELECT id, room_id, sender_id, content, sent_at FROM messages "+
			"WHERE sender_id = $1 ORDER BY sent_at, id",
		senderId,
	)
}

// GetMessagesBetween returns all messages whose send timestamp falls in
// the closed interval [start, end], ascending.
func (db *PgRoomChatRepository) GetMessagesBetween(start, end time.Time) ([]Message, error) {
	return db.queryMessages(
		"SELECT id, room_id, sender_id, content, sent_at FROM messages "+
			"WHERE sent_at >= $1 AND sent_at <= $2 ORDER BY sent_at, id",
		start,
		end,
	)
}

func (db *PgRoomChatRepository) queryMessages(query string, args ...any) ([]Message, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMessages(rows)
}

func scanMessages(rows *sql.Rows) ([]Message, error) {
	var messages = make([]Message, 0)
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Id, &msg.RoomId, &msg.SenderId, &msg.Content, &msg.SentAt); err != nil {
			return nil, err
		}

		messages = append(messages, msg)
	}

	return messages, rows.Err()
}
