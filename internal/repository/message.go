package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jobboard/internal/logger"
	"github.com/jobboard/internal/model"
)

const messageCols = `m.id, m.sender_id, m.receiver_id, m.content, m.message_type,
	        m.video_call_id, m.video_call_duration, m.application_id, m.created_at, m.read_at`

type MessageRepository struct {
	pool *pgxpool.Pool
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{pool: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *model.Message) error {
	defer logger.DeferLogDuration("msg.Create", time.Now())()
	_, err := r.pool.Exec(ctx,
		`INSERT INTO messages (id, sender_id, receiver_id, content, message_type, video_call_id, video_call_duration, application_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.MessageType, m.VideoCallID, m.VideoCallDuration, m.ApplicationID, m.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("msgRepo.Create: %w", err)
	}
	return nil
}

func (r *MessageRepository) GetByID(ctx context.Context, id string) (*model.Message, error) {
	defer logger.DeferLogDuration("msg.GetByID", time.Now())()
	m := &model.Message{}
	sender := &model.ProfilePublic{}
	receiver := &model.ProfilePublic{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+messageCols+`,
		        s.id, COALESCE(s.full_name,''), s.email, COALESCE(s.avatar_url,''),
		        t.id, COALESCE(t.full_name,''), t.email, COALESCE(t.avatar_url,'')
		 FROM messages m
		 JOIN profiles s ON s.id = m.sender_id
		 JOIN profiles t ON t.id = m.receiver_id
		 WHERE m.id = $1`, id,
	).Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.MessageType,
		&m.VideoCallID, &m.VideoCallDuration, &m.ApplicationID, &m.CreatedAt, &m.ReadAt,
		&sender.ID, &sender.FullName, &sender.Email, &sender.AvatarURL,
		&receiver.ID, &receiver.FullName, &receiver.Email, &receiver.AvatarURL)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("msgRepo.GetByID: %w", err)
	}
	m.Sender = sender
	m.Receiver = receiver
	return m, nil
}

// ListForUser returns every message the user sent or received, newest first,
// with both participant profiles embedded. The conversation list is folded
// from this ordering: the first row per counterpart is the freshest.
func (r *MessageRepository) ListForUser(ctx context.Context, userID string) ([]model.Message, error) {
	defer logger.DeferLogDuration("msg.ListForUser", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageCols+`,
		        s.id, COALESCE(s.full_name,''), s.email, COALESCE(s.avatar_url,''),
		        t.id, COALESCE(t.full_name,''), t.email, COALESCE(t.avatar_url,'')
		 FROM messages m
		 JOIN profiles s ON s.id = m.sender_id
		 JOIN profiles t ON t.id = m.receiver_id
		 WHERE m.sender_id = $1 OR m.receiver_id = $1
		 ORDER BY m.created_at DESC`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("msgRepo.ListForUser query: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		sender := &model.ProfilePublic{}
		receiver := &model.ProfilePublic{}
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.MessageType,
			&m.VideoCallID, &m.VideoCallDuration, &m.ApplicationID, &m.CreatedAt, &m.ReadAt,
			&sender.ID, &sender.FullName, &sender.Email, &sender.AvatarURL,
			&receiver.ID, &receiver.FullName, &receiver.Email, &receiver.AvatarURL); err != nil {
			return nil, fmt.Errorf("msgRepo.ListForUser scan: %w", err)
		}
		m.Sender = sender
		m.Receiver = receiver
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msgRepo.ListForUser rows: %w", err)
	}
	return messages, nil
}

// GetThread returns the full exchange between two users, oldest first, with
// sender profiles and, where a message references an application, the job
// title and company name it was exchanged over.
func (r *MessageRepository) GetThread(ctx context.Context, userID, otherID string) ([]model.Message, error) {
	defer logger.DeferLogDuration("msg.GetThread", time.Now())()
	rows, err := r.pool.Query(ctx,
		`SELECT `+messageCols+`,
		        s.id, COALESCE(s.full_name,''), s.email, COALESCE(s.avatar_url,''),
		        j.title, c.company_name
		 FROM messages m
		 JOIN profiles s ON s.id = m.sender_id
		 LEFT JOIN applications a ON a.id = m.application_id
		 LEFT JOIN jobs j ON j.id = a.job_id
		 LEFT JOIN companies c ON c.id = j.company_id
		 WHERE (m.sender_id = $1 AND m.receiver_id = $2)
		    OR (m.sender_id = $2 AND m.receiver_id = $1)
		 ORDER BY m.created_at ASC`, userID, otherID,
	)
	if err != nil {
		return nil, fmt.Errorf("msgRepo.GetThread query: %w", err)
	}
	defer rows.Close()

	var messages []model.Message
	for rows.Next() {
		var m model.Message
		sender := &model.ProfilePublic{}
		var jobTitle, companyName *string
		if err := rows.Scan(&m.ID, &m.SenderID, &m.ReceiverID, &m.Content, &m.MessageType,
			&m.VideoCallID, &m.VideoCallDuration, &m.ApplicationID, &m.CreatedAt, &m.ReadAt,
			&sender.ID, &sender.FullName, &sender.Email, &sender.AvatarURL,
			&jobTitle, &companyName); err != nil {
			return nil, fmt.Errorf("msgRepo.GetThread scan: %w", err)
		}
		m.Sender = sender
		if jobTitle != nil {
			m.Application = &model.ApplicationContext{JobTitle: *jobTitle}
			if companyName != nil {
				m.Application.CompanyName = *companyName
			}
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("msgRepo.GetThread rows: %w", err)
	}
	return messages, nil
}

// MarkThreadRead stamps read_at on every unread message sent by otherID to
// userID. read_at is only ever set once; already-read rows are untouched.
// Returns the number of messages marked.
func (r *MessageRepository) MarkThreadRead(ctx context.Context, userID, otherID string, readAt time.Time) (int64, error) {
	defer logger.DeferLogDuration("msg.MarkThreadRead", time.Now())()
	tag, err := r.pool.Exec(ctx,
		`UPDATE messages SET read_at = $3
		 WHERE receiver_id = $1 AND sender_id = $2 AND read_at IS NULL`,
		userID, otherID, readAt,
	)
	if err != nil {
		return 0, fmt.Errorf("msgRepo.MarkThreadRead: %w", err)
	}
	return tag.RowsAffected(), nil
}

// CountUnread returns the number of unread messages addressed to the user.
func (r *MessageRepository) CountUnread(ctx context.Context, userID string) (int, error) {
	defer logger.DeferLogDuration("msg.CountUnread", time.Now())()
	var n int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE receiver_id = $1 AND read_at IS NULL`, userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("msgRepo.CountUnread: %w", err)
	}
	return n, nil
}
