package sqlite

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ericfisherdev/drivemux/internal/domain/model"
	"github.com/ericfisherdev/drivemux/internal/domain/port/driven"
)

// encPrefix marks a private key that was encrypted before storage, so a
// database written without a secret key stays readable after one is added.
const encPrefix = "enc:"

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

// AccountRepo is the SQLite implementation of the AccountStore port.
// Private key material is encrypted with AES-256-GCM before write when a
// 32-byte key is configured; with a nil key, material is stored as-is.
type AccountRepo struct {
	db  *DB
	key []byte
}

// NewAccountRepo creates an AccountRepo. key must be 32 bytes for
// AES-256-GCM, or nil to store private keys unencrypted.
func NewAccountRepo(db *DB, key []byte) *AccountRepo {
	return &AccountRepo{db: db, key: key}
}

// Add stores a new account and returns it with its assigned id.
func (r *AccountRepo) Add(ctx context.Context, account model.ServiceAccount) (model.ServiceAccount, error) {
	sealed, err := r.seal(account.PrivateKey)
	if err != nil {
		return model.ServiceAccount{}, fmt.Errorf("seal private key for %q: %w", account.ClientEmail, err)
	}

	if account.AddedAt.IsZero() {
		account.AddedAt = time.Now().UTC()
	}
	if account.RootFolderID == "" {
		account.RootFolderID = "root"
	}

	const query = `INSERT INTO accounts (client_email, private_key, root_folder_id, added_at) VALUES (?, ?, ?, ?)`
	res, err := r.db.Writer.ExecContext(ctx, query,
		account.ClientEmail, sealed, account.RootFolderID, account.AddedAt.UTC().Format(time.RFC3339))
	if err != nil {
		return model.ServiceAccount{}, fmt.Errorf("add account %q: %w", account.ClientEmail, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return model.ServiceAccount{}, fmt.Errorf("account insert id: %w", err)
	}
	account.ID = id
	return account, nil
}

// ListAll returns every stored account in insertion order. This order is the
// account enumeration order for the whole system.
func (r *AccountRepo) ListAll(ctx context.Context) ([]model.ServiceAccount, error) {
	const query = `SELECT id, client_email, private_key, root_folder_id, added_at FROM accounts ORDER BY id`
	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []model.ServiceAccount{}
	for rows.Next() {
		var account model.ServiceAccount
		var sealed, addedAt string
		if err := rows.Scan(&account.ID, &account.ClientEmail, &sealed, &account.RootFolderID, &addedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}

		account.PrivateKey, err = r.open(sealed)
		if err != nil {
			return nil, fmt.Errorf("open private key for %q: %w", account.ClientEmail, err)
		}

		account.AddedAt, err = parseTime(addedAt)
		if err != nil {
			return nil, fmt.Errorf("parse added_at for %q: %w", account.ClientEmail, err)
		}

		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}

	return accounts, nil
}

// Remove deletes the account with the given id.
func (r *AccountRepo) Remove(ctx context.Context, id int64) error {
	const query = `DELETE FROM accounts WHERE id = ?`
	res, err := r.db.Writer.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("remove account %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("remove account %d: rows affected: %w", id, err)
	}
	if affected == 0 {
		return driven.ErrAccountNotFound
	}
	return nil
}

// seal encrypts plaintext with AES-256-GCM and returns enc: plus the
// base64-encoded nonce||ciphertext, or the plaintext unchanged when no key
// is configured.
func (r *AccountRepo) seal(plaintext string) (string, error) {
	if r.key == nil {
		return plaintext, nil
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("rand nonce: %w", err)
	}

	ciphertext := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return encPrefix + base64.StdEncoding.EncodeToString(ciphertext), nil
}

// open reverses seal. A stored value without the enc: prefix is plaintext.
func (r *AccountRepo) open(stored string) (string, error) {
	encoded, ok := strings.CutPrefix(stored, encPrefix)
	if !ok {
		return stored, nil
	}
	if r.key == nil {
		return "", errors.New("stored key is encrypted but no secret key is configured")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("base64 decode: %w", err)
	}

	block, err := aes.NewCipher(r.key)
	if err != nil {
		return "", fmt.Errorf("aes.NewCipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("cipher.NewGCM: %w", err)
	}

	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return "", errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("gcm.Open: %w", err)
	}

	return string(plaintext), nil
}

// parseTime handles both RFC3339 and SQLite's default datetime format.
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
