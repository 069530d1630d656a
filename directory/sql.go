package directory

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goRecover"
	"github.com/MrEthical07/goRecover/policy"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/mysql"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

const (
	tableUser          = "iam_user"
	tablePasswordHist  = "oauth_password_history"
	tablePasswordPol   = "oauth_password_policy"
	tableSystemSetting = "iam_system_setting"
)

type userRow struct {
	ID             int64          `db:"id"`
	LoginName      string         `db:"login_name"`
	Email          string         `db:"email"`
	OrganizationID int64          `db:"organization_id"`
	HashPassword   sql.NullString `db:"hash_password"`
	IsLDAP         bool           `db:"is_ldap"`
	RealName       sql.NullString `db:"real_name"`
}

func (r userRow) identity() *goRecover.Identity {
	return &goRecover.Identity{
		ID:             r.ID,
		LoginName:      r.LoginName,
		Email:          r.Email,
		OrganizationID: r.OrganizationID,
		PasswordHash:   r.HashPassword.String,
		Federated:      r.IsLDAP,
		RealName:       r.RealName.String,
	}
}

var userColumns = []any{"id", "login_name", "email", "organization_id", "hash_password", "is_ldap", "real_name"}

type policyRow struct {
	OrganizationID   int64          `db:"organization_id"`
	EnablePassword   bool           `db:"enable_password"`
	MinLength        sql.NullInt64  `db:"min_length"`
	MaxLength        sql.NullInt64  `db:"max_length"`
	DigitsCount      sql.NullInt64  `db:"digits_count"`
	LowercaseCount   sql.NullInt64  `db:"lowercase_count"`
	UppercaseCount   sql.NullInt64  `db:"uppercase_count"`
	SpecialCharCount sql.NullInt64  `db:"special_char_count"`
	NotUsername      bool           `db:"not_username"`
	Regex            sql.NullString `db:"regular_expression"`
	NotRecentCount   sql.NullInt64  `db:"not_recent_count"`
}

type settingRow struct {
	MinPasswordLength sql.NullInt64 `db:"min_password_length"`
	MaxPasswordLength sql.NullInt64 `db:"max_password_length"`
}

// SQL reads accounts and password policies from a relational database. It
// implements goRecover.Directory and policy.Source.
type SQL struct {
	db  *goqu.Database
	now func() time.Time
}

// New wraps an open database. dialect is "postgres" or "mysql".
func New(dialect string, db *sql.DB) *SQL {
	return &SQL{db: goqu.New(dialect, db), now: time.Now}
}

// Open connects with driver "postgres" or "mysql" and verifies the
// connection.
func Open(ctx context.Context, driver, dsn string) (*SQL, *sql.DB, error) {
	switch driver {
	case "postgres", "mysql":
	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ping %s: %w", driver, err)
	}
	return New(driver, db), db, nil
}

func (s *SQL) FindByEmail(ctx context.Context, email string) (*goRecover.Identity, error) {
	var row userRow
	found, err := s.db.From(tableUser).
		Select(userColumns...).
		Where(goqu.Func("LOWER", goqu.C("email")).Eq(strings.ToLower(strings.TrimSpace(email)))).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, goRecover.ErrIdentityNotFound
	}
	return row.identity(), nil
}

// EmailByID resolves the address of a user. It matches notify.EmailResolver.
func (s *SQL) EmailByID(ctx context.Context, id int64) (string, error) {
	var email string
	found, err := s.db.From(tableUser).
		Select("email").
		Where(goqu.C("id").Eq(id)).
		ScanValContext(ctx, &email)
	if err != nil {
		return "", err
	}
	if !found {
		return "", goRecover.ErrIdentityNotFound
	}
	return email, nil
}

// UpdateCredentials stores the new hash and appends it to the password
// history in one transaction.
func (s *SQL) UpdateCredentials(ctx context.Context, id int64, passwordHash string) (*goRecover.Identity, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	var updated *goRecover.Identity
	err = tx.Wrap(func() error {
		now := s.now().UTC()
		res, err := tx.Update(tableUser).
			Set(goqu.Record{
				"hash_password":            passwordHash,
				"last_password_updated_at": now,
			}).
			Where(goqu.C("id").Eq(id)).
			Executor().
			ExecContext(ctx)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return goRecover.ErrIdentityNotFound
		}

		if _, err := tx.Insert(tablePasswordHist).
			Rows(goqu.Record{
				"user_id":       id,
				"hash_password": passwordHash,
				"creation_date": now,
			}).
			Executor().
			ExecContext(ctx); err != nil {
			return err
		}

		var row userRow
		found, err := tx.From(tableUser).
			Select(userColumns...).
			Where(goqu.C("id").Eq(id)).
			ScanStructContext(ctx, &row)
		if err != nil {
			return err
		}
		if !found {
			return goRecover.ErrIdentityNotFound
		}
		updated = row.identity()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// RecentPasswordHashes returns up to limit hashes, newest first.
func (s *SQL) RecentPasswordHashes(ctx context.Context, id int64, limit int) ([]string, error) {
	if limit <= 0 {
		return nil, nil
	}
	var hashes []string
	err := s.db.From(tablePasswordHist).
		Select("hash_password").
		Where(goqu.C("user_id").Eq(id)).
		Order(goqu.C("creation_date").Desc(), goqu.C("id").Desc()).
		Limit(uint(limit)).
		ScanValsContext(ctx, &hashes)
	if err != nil {
		return nil, err
	}
	return hashes, nil
}

func (s *SQL) OrganizationPolicy(ctx context.Context, organizationID int64) (*policy.OrganizationPolicy, error) {
	var row policyRow
	found, err := s.db.From(tablePasswordPol).
		Select(
			"organization_id", "enable_password", "min_length", "max_length",
			"digits_count", "lowercase_count", "uppercase_count", "special_char_count",
			"not_username", "regular_expression", "not_recent_count",
		).
		Where(goqu.C("organization_id").Eq(organizationID)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &policy.OrganizationPolicy{
		OrganizationID:   row.OrganizationID,
		EnablePassword:   row.EnablePassword,
		MinLength:        int(row.MinLength.Int64),
		MaxLength:        int(row.MaxLength.Int64),
		DigitsCount:      int(row.DigitsCount.Int64),
		LowercaseCount:   int(row.LowercaseCount.Int64),
		UppercaseCount:   int(row.UppercaseCount.Int64),
		SpecialCharCount: int(row.SpecialCharCount.Int64),
		NotUsername:      row.NotUsername,
		Regex:            row.Regex.String,
		NotRecentCount:   int(row.NotRecentCount.Int64),
	}, nil
}

func (s *SQL) SystemSetting(ctx context.Context) (*policy.SystemSetting, error) {
	var row settingRow
	found, err := s.db.From(tableSystemSetting).
		Select("min_password_length", "max_password_length").
		Limit(1).
		ScanStructContext(ctx, &row)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &policy.SystemSetting{
		MinPasswordLength: nullableInt(row.MinPasswordLength),
		MaxPasswordLength: nullableInt(row.MaxPasswordLength),
	}, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
