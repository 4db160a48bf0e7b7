package store

import (
	"context"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/melodiia/voicerelay/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS voice_channels (
	id         bigserial PRIMARY KEY,
	name       text NOT NULL,
	creator    text NOT NULL,
	created_at timestamptz NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS voice_channel_participants (
	channel_id bigint NOT NULL REFERENCES voice_channels(id) ON DELETE CASCADE,
	identity   text NOT NULL,
	PRIMARY KEY (channel_id, identity)
);
CREATE TABLE IF NOT EXISTS voice_invitations (
	id         bigserial PRIMARY KEY,
	channel_id bigint NOT NULL REFERENCES voice_channels(id) ON DELETE CASCADE,
	sender     text NOT NULL,
	addressee  text NOT NULL,
	status     text NOT NULL DEFAULT 'pending',
	created_at timestamptz NOT NULL DEFAULT now()
);
`

// Postgres is the production Store, backed by a pgx pool.
type Postgres struct {
	pool    *pgxpool.Pool
	builder sq.StatementBuilderType
}

func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.Connect(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("store: connect: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("store: bootstrap schema: %w", err)
	}
	log.Info().Str("module", "store").Msg("postgres store ready")
	return &Postgres{
		pool:    pool,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

func (p *Postgres) Close() { p.pool.Close() }

func (p *Postgres) CreateChannel(ctx context.Context, name string, creator domain.Identity) (*domain.Channel, error) {
	if err := domain.ValidateChannelName(name); err != nil {
		return nil, err
	}
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query, args, err := p.builder.
		Insert("voice_channels").
		Columns("name", "creator").
		Values(name, string(creator)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	ch := domain.Channel{Name: name, Creator: creator, Participants: []domain.Identity{creator}}
	if err := tx.QueryRow(ctx, query, args...).Scan(&ch.ID, &ch.CreatedAt); err != nil {
		return nil, err
	}

	query, args, err = p.builder.
		Insert("voice_channel_participants").
		Columns("channel_id", "identity").
		Values(int64(ch.ID), string(creator)).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (p *Postgres) Channel(ctx context.Context, id domain.ChannelID, viewer domain.Identity) (*domain.Channel, error) {
	query, args, err := p.builder.
		Select("c.id", "c.name", "c.creator", "c.created_at").
		From("voice_channels c").
		Join("voice_channel_participants vp ON vp.channel_id = c.id").
		Where(sq.Eq{"c.id": int64(id), "vp.identity": string(viewer)}).
		ToSql()
	if err != nil {
		return nil, err
	}
	var ch domain.Channel
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&ch.ID, &ch.Name, &ch.Creator, &ch.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if ch.Participants, err = p.participants(ctx, id); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (p *Postgres) MyChannels(ctx context.Context, viewer domain.Identity) ([]domain.Channel, error) {
	query, args, err := p.builder.
		Select("c.id", "c.name", "c.creator", "c.created_at").
		From("voice_channels c").
		Join("voice_channel_participants vp ON vp.channel_id = c.id").
		Where(sq.Eq{"vp.identity": string(viewer)}).
		OrderBy("c.created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Channel, 0)
	for rows.Next() {
		var ch domain.Channel
		if err := rows.Scan(&ch.ID, &ch.Name, &ch.Creator, &ch.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

func (p *Postgres) DeleteChannel(ctx context.Context, id domain.ChannelID, caller domain.Identity) error {
	ch, err := p.Channel(ctx, id, caller)
	if err != nil {
		return err
	}
	if ch.Creator != caller {
		return ErrForbidden
	}
	query, args, err := p.builder.
		Delete("voice_channels").
		Where(sq.Eq{"id": int64(id)}).
		ToSql()
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, query, args...)
	return err
}

func (p *Postgres) CreateInvitation(ctx context.Context, channel domain.ChannelID, sender, addressee domain.Identity) (*domain.Invitation, error) {
	// Sender must participate; reuse the visibility rule.
	if _, err := p.Channel(ctx, channel, sender); err != nil {
		return nil, err
	}
	query, args, err := p.builder.
		Insert("voice_invitations").
		Columns("channel_id", "sender", "addressee", "status").
		Values(int64(channel), string(sender), string(addressee), string(domain.InvitationPending)).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, err
	}
	inv := domain.Invitation{
		Channel:   channel,
		Sender:    sender,
		Addressee: addressee,
		Status:    domain.InvitationPending,
	}
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&inv.ID, &inv.CreatedAt); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (p *Postgres) RespondInvitation(ctx context.Context, id domain.InvitationID, caller domain.Identity, accept bool) (*domain.Invitation, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	query, args, err := p.builder.
		Select("id", "channel_id", "sender", "addressee", "status", "created_at").
		From("voice_invitations").
		Where(sq.Eq{"id": int64(id), "addressee": string(caller)}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, err
	}
	var inv domain.Invitation
	if err := tx.QueryRow(ctx, query, args...).Scan(&inv.ID, &inv.Channel, &inv.Sender, &inv.Addressee, &inv.Status, &inv.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if inv.Status != domain.InvitationPending {
		return nil, ErrAlreadyResponded
	}

	status := domain.InvitationRejected
	if accept {
		status = domain.InvitationAccepted
	}
	query, args, err = p.builder.
		Update("voice_invitations").
		Set("status", string(status)).
		Where(sq.Eq{"id": int64(id)}).
		ToSql()
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return nil, err
	}

	if accept {
		query, args, err = p.builder.
			Insert("voice_channel_participants").
			Columns("channel_id", "identity").
			Values(int64(inv.Channel), string(caller)).
			Suffix("ON CONFLICT DO NOTHING").
			ToSql()
		if err != nil {
			return nil, err
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	inv.Status = status
	return &inv, nil
}

func (p *Postgres) Authorize(ctx context.Context, id domain.Identity, room domain.RoomID) (bool, error) {
	chID, err := domain.ParseChannelID(room)
	if err != nil {
		return false, nil
	}
	query, args, err := p.builder.
		Select("1").
		From("voice_channel_participants").
		Where(sq.Eq{"channel_id": int64(chID), "identity": string(id)}).
		ToSql()
	if err != nil {
		return false, err
	}
	var one int
	if err := p.pool.QueryRow(ctx, query, args...).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *Postgres) participants(ctx context.Context, id domain.ChannelID) ([]domain.Identity, error) {
	query, args, err := p.builder.
		Select("identity").
		From("voice_channel_participants").
		Where(sq.Eq{"channel_id": int64(id)}).
		ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.Identity, 0)
	for rows.Next() {
		var ident string
		if err := rows.Scan(&ident); err != nil {
			return nil, err
		}
		out = append(out, domain.Identity(ident))
	}
	return out, rows.Err()
}
