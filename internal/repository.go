package internal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgconn"
	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	"github.com/DrGermanius/Glonni/internal/model"
	"github.com/DrGermanius/Glonni/internal/state"
)

const (
	profileFields = "id, role, full_name, vendor_id, account_id, created_at"
	stateChannel  = "glonni_state"

	uniqueViolation = "23505"
)

//go:embed migrations/*.sql
var migrations embed.FS

type IRepository interface {
	Register(context.Context, string, string) (int, error)
	IsUserExist(context.Context, string) (bool, error)
	GetCredentials(context.Context, string) (int, string, error)
	IProfiles
}

// IProfiles is the authoritative store of identity-linked profiles.
type IProfiles interface {
	GetProfile(context.Context, string) (model.Profile, error)
	CreateProfile(context.Context, model.Profile) (bool, error)
	UpdateProfile(context.Context, model.Profile) error
	FindProfileByAccount(context.Context, string) (model.Profile, error)
	FindProfileByVendor(context.Context, string) (model.Profile, error)
}

type Repository struct {
	Conn   *sql.DB
	Logger *zap.SugaredLogger
}

func NewRepository(connString string, logger *zap.SugaredLogger) (*Repository, error) {
	conn, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}

	if err = conn.Ping(); err != nil {
		return nil, err
	}

	if err = migrate(conn); err != nil {
		return nil, err
	}

	return &Repository{Conn: conn, Logger: logger}, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db, "migrations")
}

func (r Repository) Close() error {
	return r.Conn.Close()
}

func (r Repository) Register(ctx context.Context, login, password string) (int, error) {
	var id int
	row := r.Conn.QueryRowContext(ctx, "INSERT INTO users (login, password) VALUES ($1, $2) RETURNING id", login, password)

	err := row.Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r Repository) IsUserExist(ctx context.Context, login string) (bool, error) {
	exist := false

	row := r.Conn.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM users WHERE login = $1)", login)
	err := row.Scan(&exist)
	if err != nil {
		return false, err
	}

	return exist, nil
}

// GetCredentials returns the user id and the stored password hash.
func (r Repository) GetCredentials(ctx context.Context, login string) (int, string, error) {
	var (
		id   int
		hash string
	)
	row := r.Conn.QueryRowContext(ctx, "SELECT id, password FROM users WHERE login = $1", login)

	err := row.Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, "", ErrInvalidCredentials
	}
	if err != nil {
		return 0, "", err
	}

	return id, hash, nil
}

func (r Repository) GetProfile(ctx context.Context, id string) (model.Profile, error) {
	return r.findProfile(ctx, "SELECT "+profileFields+" FROM profiles WHERE id = $1", id)
}

func (r Repository) FindProfileByAccount(ctx context.Context, accountID string) (model.Profile, error) {
	return r.findProfile(ctx, "SELECT "+profileFields+" FROM profiles WHERE account_id = $1 LIMIT 1", accountID)
}

func (r Repository) FindProfileByVendor(ctx context.Context, vendorID string) (model.Profile, error) {
	return r.findProfile(ctx, "SELECT "+profileFields+" FROM profiles WHERE vendor_id = $1 LIMIT 1", vendorID)
}

func (r Repository) findProfile(ctx context.Context, query, arg string) (model.Profile, error) {
	var p model.Profile
	var role, fullName, vendor, account sql.NullString
	row := r.Conn.QueryRowContext(ctx, query, arg)

	err := row.Scan(&p.ID, &role, &fullName, &vendor, &account, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, ErrNoRecords
	}
	if err != nil {
		return model.Profile{}, err
	}

	p.Role = model.Role(role.String)
	p.FullName = fullName.String
	p.VendorID = vendor.String
	p.AccountID = account.String
	return p, nil
}

// CreateProfile inserts p and reports false when a profile with the same id
// already exists.
func (r Repository) CreateProfile(ctx context.Context, p model.Profile) (bool, error) {
	_, err := r.Conn.ExecContext(ctx, "INSERT INTO profiles (id, role, full_name, created_at) VALUES ($1, $2, $3, $4)",
		p.ID, nullable(string(p.Role)), nullable(p.FullName), p.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r Repository) UpdateProfile(ctx context.Context, p model.Profile) error {
	res, err := r.Conn.ExecContext(ctx, "UPDATE profiles SET role = $1, full_name = $2, vendor_id = $3, account_id = $4 WHERE id = $5",
		nullable(string(p.Role)), nullable(p.FullName), nullable(p.VendorID), nullable(p.AccountID), p.ID)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoRecords
	}
	return nil
}

func (r Repository) Load(ctx context.Context, key string) (state.Entry, error) {
	var e state.Entry
	row := r.Conn.QueryRowContext(ctx, "SELECT payload, version FROM state WHERE key = $1", key)

	err := row.Scan(&e.Payload, &e.Version)
	if errors.Is(err, sql.ErrNoRows) {
		return state.Entry{}, nil
	}
	if err != nil {
		return state.Entry{}, err
	}
	return e, nil
}

// Save writes payload when the stored version still equals version and
// signals the change to other processes within the same transaction.
func (r Repository) Save(ctx context.Context, key string, payload []byte, version int64) (int64, error) {
	tx, err := r.Conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var next int64
	err = tx.QueryRowContext(ctx, `INSERT INTO state (key, payload, version, updated_at) VALUES ($1, $2, 1, $3)
		ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, version = state.version + 1, updated_at = EXCLUDED.updated_at
		WHERE state.version = $4 RETURNING version`,
		key, string(payload), time.Now(), version).Scan(&next)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, state.ErrVersionConflict
	}
	if err != nil {
		return 0, err
	}

	_, err = tx.ExecContext(ctx, "SELECT pg_notify($1, $2)", stateChannel, fmt.Sprintf("%s:%d", key, next))
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}

	r.Logger.Debugf("state %s saved at version %d", key, next)
	return next, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
