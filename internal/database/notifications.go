package database

import (
	"database/sql"
	"errors"
	"time"
)

const selectNotification = "SELECT id, user_id, type, title, content, sent_at, is_read, read_at FROM notifications "

func (db *PgRoomChatRepository) CreateNotification(params CreateNotificationParams) (Notification, error) {
	res := db.conn.QueryRow(
		"INSERT INTO notifications (user_id, type, title, content, sent_at, is_read) "+
			"VALUES ($1, $2, $3, $4, $5, FALSE) RETURNING id, user_id, type, title, content, sent_at, is_read, read_at",
		params.UserId,
		params.Type,
		params.Title,
		params.Content,
		time.Now().UTC(),
	)

	return scanNotificationRow(res)
}

// ListNotifications returns all of the recipient's notifications, newest
// first.
func (db *PgRoomChatRepository) ListNotifications(userId int) ([]Notification, error) {
	return db.queryNotifications(
		selectNotification+"WHERE user_id = $1 ORDER BY sent_at DESC, id DESC",
		userId,
	)
}

func (db *PgRoomChatRepository) ListUnreadNotifications(userId int) ([]Notification, error) {
	return db.queryNotifications(
		selectNotification+"WHERE user_id = $1 AND is_read = FALSE ORDER BY sent_at DESC, id DESC",
		userId,
	)
}

func (db *PgRoomChatRepository) CountUnreadNotifications(userId int) (int, error) {
	row := db.conn.QueryRow(
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE",
		userId,
	)

	var count int
	err := row.Scan(&count)

	return count, err
}

// MarkNotificationRead flips the read flag exactly once; read_at is set on
// the false-to-true transition and never touched again. Marking an
// already-read notification is a no-op that returns the stored record.
func (db *PgRoomChatRepository) MarkNotificationRead(notificationId, userId int) (Notification, error) {
	res := db.conn.QueryRow(
		"UPDATE notifications SET is_read = TRUE, read_at = $3 "+
			"WHERE id = $1 AND user_id = $2 AND is_read = FALSE "+
			"RETURNING id, user_id, type, title, content, sent_at, is_read, read_at",
		notificationId,
		userId,
		time.Now().UTC(),
	)

	notif, err := scanNotificationRow(res)
	if err == nil {
		return notif, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Notification{}, err
	}

	// nothing updated: either already read, not owned, or gone
	row := db.conn.QueryRow(
		selectNotification+"WHERE id = $1 AND user_id = $2 LIMIT 1",
		notificationId,
		userId,
	)

	return scanNotificationRow(row)
}

func (db *PgRoomChatRepository) MarkAllNotificationsRead(userId int) error {
	_, err := db.conn.Exec(
		"UPDATE notifications SET is_read = TRUE, read_at = $2 "+
			"WHERE user_id = $1 AND is_read = FALSE",
		userId,
		time.Now().UTC(),
	)

	return err
}

func (db *PgRoomChatRepository) DeleteNotification(notificationId, userId int) error {
	res, err := db.conn.Exec(
		"DELETE FROM notifications WHERE id = $1 AND user_id = $2",
		notificationId,
		userId,
	)
	if err != nil {
		return err
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

func (db *PgRoomChatRepository) queryNotifications(query string, args ...any) ([]Notification, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications = make([]Notification, 0)
	for rows.Next() {
		var n Notification
		var readAt sql.NullTime
		if err := rows.Scan(&n.Id, &n.UserId, &n.Type, &n.Title, &n.Content, &n.SentAt, &n.IsRead, &readAt); err != nil {
			return nil, err
		}
		if readAt.Valid {
			n.ReadAt = &readAt.Time
		}

		notifications = append(notifications, n)
	}

	return notifications, rows.Err()
}

func scanNotificationRow(row *sql.Row) (Notification, error) {
	var n Notification
	var readAt sql.NullTime
	err := row.Scan(&n.Id, &n.UserId, &n.Type, &n.Title, &n.Content, &n.SentAt, &n.IsRead, &readAt)
	if err != nil {
		return Notification{}, translateErr(err)
	}
	if readAt.Valid {
		n.ReadAt = &readAt.Time
	}

	return n, nil
}
