package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	// Register the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/ferro-labs/slumberlib/collection"
	"github.com/ferro-labs/slumberlib/exchange"
	"github.com/ferro-labs/slumberlib/internal/logging"
	"github.com/ferro-labs/slumberlib/internal/metrics"
)

// DB is the SQLite-backed durable exchange database described in spec.md
// §4.3. It owns the versioned migration chain and serialises every access
// behind a single mutex (spec.md §5: "SQLite connection: serialised access
// via an internal mutex; migrations run before any concurrent use"), the
// same posture the teacher's internal/admin.SQLStore and
// internal/requestlog.SQLWriter take toward database/sql, generalised here
// to an explicit mutex since this schema's migration hooks do row-by-row
// copies that must not interleave with concurrent writers.
type DB struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens (creating if necessary) a SQLite database at dsn and runs every
// pending migration. Migration failures are fatal (spec.md §7: "Database
// errors during migration are fatal").
func Open(dsn string) (*DB, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = "slumberlib-exchanges.db"
	}
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open exchange database: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping exchange database: %w", err)
	}
	d := &DB{db: sqlDB}
	if err := d.migrate(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("migrate exchange database: %w", err)
	}
	return d, nil
}

// Close releases the underlying SQLite connection.
func (d *DB) Close() error {
	if d == nil || d.db == nil {
		return nil
	}
	return d.db.Close()
}

// migration is one step of the versioned chain described in spec.md §4.3.
// Each step must be idempotent; Up runs inside the migration transaction.
type migration struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

var migrations = []migration{
	{1, "create_collections", migrateCollectionsUp},
	{2, "create_requests_v1", migrateRequestsV1Up},
	{3, "create_ui_state_v1", migrateUIStateV1Up},
	{4, "clear_binary_tables", migrateClearBinaryTablesUp},
	{5, "create_requests_v2", migrateRequestsV2Up},
	{6, "create_ui_state_v2", migrateUIStateV2Up},
	{7, "collections_path_to_text", migrateCollectionsPathTextUp},
}

func (d *DB) migrate() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	current := 0
	row := d.db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_version`)
	if err := row.Scan(&current); err != nil {
		return fmt.Errorf("read schema_version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := d.db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d (%s): %w", m.version, m.name, err)
		}
		if err := m.up(tx); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_version(version) VALUES(?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d (%s): %w", m.version, m.name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d (%s): %w", m.version, m.name, err)
		}
		logging.Logger.Info("applied exchange database migration", "version", m.version, "name", m.name)
	}
	return nil
}

// --- migration 1: collections -----------------------------------------

func migrateCollectionsUp(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS collections (
	id   TEXT PRIMARY KEY,
	path BLOB UNIQUE
)`)
	return err
}

// --- migration 2: requests (v1, binary blobs) --------------------------

func migrateRequestsV1Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS requests (
	id            TEXT PRIMARY KEY,
	collection_id TEXT NOT NULL,
	request       BLOB NOT NULL,
	response      BLOB
)`)
	return err
}

// --- migration 3: ui_state (v1) ----------------------------------------

func migrateUIStateV1Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS ui_state (
	collection_id TEXT NOT NULL,
	key           BLOB NOT NULL,
	value         BLOB NOT NULL,
	PRIMARY KEY (collection_id, key)
)`)
	return err
}

// --- migration 4: one-shot clear of the binary-format tables ------------
//
// spec.md §4.3 migration 4: the binary encoding used by requests/ui_state
// changed incompatibly; rather than attempt a byte-level upgrade, the
// original rows are discarded. This is one of the chain's two destructive
// steps; the other is migration 6, which drops ui_state.

func migrateClearBinaryTablesUp(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM requests`); err != nil {
		return err
	}
	_, err := tx.Exec(`DELETE FROM ui_state`)
	return err
}

// --- migration 5: requests_v2 (flattened columns) -----------------------

func migrateRequestsV2Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS requests_v2 (
	id                TEXT PRIMARY KEY,
	collection_id     TEXT NOT NULL,
	profile_id        TEXT,
	recipe_id         TEXT NOT NULL,
	method            TEXT NOT NULL,
	request_url       TEXT NOT NULL,
	request_headers   TEXT NOT NULL,
	request_body      BLOB,
	status_code       INTEGER,
	response_headers  TEXT,
	response_body     BLOB,
	start_time        DATETIME NOT NULL,
	end_time          DATETIME NOT NULL
)`)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_requests_v2_recipe ON requests_v2(collection_id, recipe_id, end_time)`); err != nil {
		return err
	}

	// Post-up hook: copy every successfully-readable row from the legacy
	// binary `requests` table into requests_v2. Row-level failures are
	// logged and skipped (spec.md §9 "migration hooks" tolerance); schema
	// statement failures above are not caught here and propagate fatally.
	rows, err := tx.Query(`SELECT id, collection_id, request, response FROM requests`)
	if err != nil {
		return fmt.Errorf("read legacy requests: %w", err)
	}
	defer rows.Close()

	type legacyRow struct {
		id, collectionID string
		request, response []byte
	}
	var legacy []legacyRow
	for rows.Next() {
		var r legacyRow
		if err := rows.Scan(&r.id, &r.collectionID, &r.request, &r.response); err != nil {
			logging.Logger.Warn("skipping unreadable legacy request row", "error", err)
			continue
		}
		legacy = append(legacy, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate legacy requests: %w", err)
	}

	for _, r := range legacy {
		rec, resp, err := decodeLegacyRequest(r.request, r.response)
		if err != nil {
			logging.Logger.Warn("skipping unreadable legacy request row", "id", r.id, "error", err)
			continue
		}
		if err := insertRequestV2(tx, r.id, r.collectionID, rec, resp, rec.startTime, rec.endTime); err != nil {
			logging.Logger.Warn("skipping legacy request row that failed to migrate", "id", r.id, "error", err)
		}
	}
	return nil
}

// legacyRequestEnvelope is the JSON shape the pre-v2 binary `requests` rows
// used, recovered here only for the migration's benefit.
type legacyRequestEnvelope struct {
	ProfileID string           `json:"profile_id"`
	RecipeID  string           `json:"recipe_id"`
	Method    string           `json:"method"`
	URL       string           `json:"url"`
	Headers   [][2]string      `json:"headers"`
	Body      []byte           `json:"body"`
	StartTime time.Time        `json:"start_time"`
	EndTime   time.Time        `json:"end_time"`
}

type legacyRequestRecord struct {
	legacyRequestEnvelope
	startTime time.Time
	endTime   time.Time
}

type legacyResponseEnvelope struct {
	StatusCode int         `json:"status_code"`
	Headers    [][2]string `json:"headers"`
	Body       []byte      `json:"body"`
}

func decodeLegacyRequest(requestBlob, responseBlob []byte) (legacyRequestRecord, legacyResponseEnvelope, error) {
	var req legacyRequestEnvelope
	if err := json.Unmarshal(requestBlob, &req); err != nil {
		return legacyRequestRecord{}, legacyResponseEnvelope{}, fmt.Errorf("decode legacy request blob: %w", err)
	}
	var resp legacyResponseEnvelope
	if len(responseBlob) > 0 {
		if err := json.Unmarshal(responseBlob, &resp); err != nil {
			return legacyRequestRecord{}, legacyResponseEnvelope{}, fmt.Errorf("decode legacy response blob: %w", err)
		}
	}
	rec := legacyRequestRecord{legacyRequestEnvelope: req, startTime: req.StartTime, endTime: req.EndTime}
	return rec, resp, nil
}

func insertRequestV2(tx *sql.Tx, id, collectionID string, rec legacyRequestRecord, resp legacyResponseEnvelope, start, end time.Time) error {
	reqHeaders, err := json.Marshal(rec.Headers)
	if err != nil {
		return err
	}
	var respHeaders []byte
	var statusCode *int
	var bodyCol []byte
	if resp.StatusCode != 0 {
		respHeaders, err = json.Marshal(resp.Headers)
		if err != nil {
			return err
		}
		sc := resp.StatusCode
		statusCode = &sc
		bodyCol = resp.Body
	}
	var profileID interface{}
	if rec.ProfileID != "" {
		profileID = rec.ProfileID
	}
	_, err = tx.Exec(`
INSERT INTO requests_v2(id, collection_id, profile_id, recipe_id, method, request_url, request_headers, request_body, status_code, response_headers, response_body, start_time, end_time)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, collectionID, profileID, rec.RecipeID, rec.Method, rec.URL, string(reqHeaders), rec.Body, statusCode, nullableString(respHeaders), bodyCol, start, end)
	return err
}

func nullableString(b []byte) interface{} {
	if b == nil {
		return nil
	}
	return string(b)
}

// --- migration 6: ui_state_v2 (text columns, JSON encoding) -------------

func migrateUIStateV2Up(tx *sql.Tx) error {
	_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS ui_state_v2 (
	collection_id TEXT NOT NULL,
	key_type      TEXT NOT NULL,
	key           TEXT NOT NULL,
	value         TEXT NOT NULL,
	PRIMARY KEY (collection_id, key_type, key)
)`)
	if err != nil {
		return err
	}

	rows, err := tx.Query(`SELECT collection_id, key, value FROM ui_state`)
	if err != nil {
		return fmt.Errorf("read legacy ui_state: %w", err)
	}
	defer rows.Close()

	type legacyUIRow struct {
		collectionID string
		key, value   []byte
	}
	var legacy []legacyUIRow
	for rows.Next() {
		var r legacyUIRow
		if err := rows.Scan(&r.collectionID, &r.key, &r.value); err != nil {
			logging.Logger.Warn("skipping unreadable legacy ui_state row", "error", err)
			continue
		}
		legacy = append(legacy, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate legacy ui_state: %w", err)
	}

	for _, r := range legacy {
		keyType, key, err := decodeLegacyUIKey(r.key)
		if err != nil {
			logging.Logger.Warn("skipping legacy ui_state row with unreadable key", "error", err)
			continue
		}
		valueJSON, err := decodeLegacyUIValue(r.value)
		if err != nil {
			logging.Logger.Warn("skipping legacy ui_state row with unreadable value", "error", err)
			continue
		}
		if _, err := tx.Exec(`INSERT OR REPLACE INTO ui_state_v2(collection_id, key_type, key, value) VALUES(?, ?, ?, ?)`,
			r.collectionID, keyType, key, valueJSON); err != nil {
			logging.Logger.Warn("skipping legacy ui_state row that failed to migrate", "error", err)
		}
	}

	if _, err := tx.Exec(`DROP TABLE ui_state`); err != nil {
		return fmt.Errorf("drop legacy ui_state table: %w", err)
	}
	return nil
}

// decodeLegacyUIKey decodes the pre-v2 binary key encoding: a type tag followed by a
// raw identifier, joined by a NUL byte.
func decodeLegacyUIKey(raw []byte) (keyType, key string, err error) {
	parts := strings.SplitN(string(raw), "\x00", 2)
	if len(parts) != 2 {
		return "", "", fmt.Errorf("malformed legacy ui_state key")
	}
	return parts[0], parts[1], nil
}

func decodeLegacyUIValue(raw []byte) (string, error) {
	if !json.Valid(raw) {
		return "", fmt.Errorf("legacy ui_state value is not valid JSON")
	}
	return string(raw), nil
}

// --- migration 7: collections.path binary -> UTF-8 text -----------------

func migrateCollectionsPathTextUp(tx *sql.Tx) error {
	if _, err := tx.Exec(`ALTER TABLE collections ADD COLUMN path_text TEXT`); err != nil && !isDuplicateColumnError(err) {
		return fmt.Errorf("add collections.path_text: %w", err)
	}

	rows, err := tx.Query(`SELECT id, path FROM collections WHERE path_text IS NULL`)
	if err != nil {
		return fmt.Errorf("read legacy collection paths: %w", err)
	}
	type row struct {
		id   string
		path []byte
	}
	var legacy []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.id, &r.path); err != nil {
			rows.Close()
			return fmt.Errorf("scan legacy collection path: %w", err)
		}
		legacy = append(legacy, r)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for _, r := range legacy {
		canonical := filepath.Clean(string(r.path))
		if _, err := tx.Exec(`UPDATE collections SET path_text = ? WHERE id = ?`, canonical, r.id); err != nil {
			logging.Logger.Warn("skipping collection row with unmigratable path", "id", r.id, "error", err)
		}
	}
	return nil
}

func isDuplicateColumnError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate column")
}

// --- collections table maintenance (spec.md §6) -------------------------

// EnsureCollection eagerly creates a collections row for path, returning its
// stable id. Calling it again for the same canonical path is a no-op.
func (d *DB) EnsureCollection(path string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	canonical := filepath.Clean(path)
	row := d.db.QueryRow(`SELECT id FROM collections WHERE path_text = ?`, canonical)
	var id string
	err := row.Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("lookup collection: %w", err)
	}

	id = uuid.NewString()
	if _, err := d.db.Exec(`INSERT INTO collections(id, path, path_text) VALUES(?, ?, ?)`, id, []byte(canonical), canonical); err != nil {
		return "", fmt.Errorf("insert collection: %w", err)
	}
	return id, nil
}

// --- requests_v2 access --------------------------------------------------

func headersToJSON(h exchange.Headers) (string, error) {
	pairs := make([][2]string, len(h))
	for i, entry := range h {
		pairs[i] = [2]string{entry.Name, entry.Value}
	}
	b, err := json.Marshal(pairs)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func headersFromJSON(s string) (exchange.Headers, error) {
	if s == "" {
		return nil, nil
	}
	var pairs [][2]string
	if err := json.Unmarshal([]byte(s), &pairs); err != nil {
		return nil, err
	}
	h := make(exchange.Headers, len(pairs))
	for i, p := range pairs {
		h[i] = exchange.Header{Name: p[0], Value: p[1]}
	}
	return h, nil
}

// InsertExchange persists exc under collectionID (spec.md §4.2 "Persistence":
// only recipes with persist=true reach this call).
func (d *DB) InsertExchange(collectionID string, exc *exchange.Exchange) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	reqHeaders, err := headersToJSON(exc.Request.Headers)
	if err != nil {
		return fmt.Errorf("encode request headers: %w", err)
	}
	respHeaders, err := headersToJSON(exc.Response.Headers)
	if err != nil {
		return fmt.Errorf("encode response headers: %w", err)
	}
	var profileID interface{}
	if exc.Request.ProfileID != nil {
		profileID = string(*exc.Request.ProfileID)
	}

	_, err = d.db.Exec(`
INSERT INTO requests_v2(id, collection_id, profile_id, recipe_id, method, request_url, request_headers, request_body, status_code, response_headers, response_body, start_time, end_time)
VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		exc.ID.String(), collectionID, profileID, string(exc.Request.RecipeID), string(exc.Request.Method),
		exc.Request.URL, reqHeaders, exc.Request.Body, exc.Response.StatusCode, respHeaders, exc.Response.Body,
		exc.StartTime.UTC(), exc.EndTime.UTC())
	if err != nil {
		metrics.StoreOperations.WithLabelValues("insert_exchange", "error").Inc()
		return fmt.Errorf("insert exchange: %w", err)
	}
	metrics.StoreOperations.WithLabelValues("insert_exchange", "ok").Inc()
	return nil
}

func scanExchangeRow(scan func(dest ...interface{}) error) (string, *exchange.Exchange, error) {
	var (
		id, collectionID, recipeID, method, url, reqHeadersJSON string
		profileID                                               sql.NullString
		reqBody                                                 []byte
		statusCode                                               sql.NullInt64
		respHeadersJSON                                          sql.NullString
		respBody                                                 []byte
		startTime, endTime                                      time.Time
	)
	if err := scan(&id, &collectionID, &profileID, &recipeID, &method, &url, &reqHeadersJSON, &reqBody,
		&statusCode, &respHeadersJSON, &respBody, &startTime, &endTime); err != nil {
		return "", nil, err
	}

	reqHeaders, err := headersFromJSON(reqHeadersJSON)
	if err != nil {
		return "", nil, fmt.Errorf("decode request headers: %w", err)
	}
	respHeaders, err := headersFromJSON(respHeadersJSON.String)
	if err != nil {
		return "", nil, fmt.Errorf("decode response headers: %w", err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return "", nil, fmt.Errorf("parse exchange id: %w", err)
	}

	var profileIDPtr *collection.ProfileID
	if profileID.Valid {
		p := collection.ProfileID(profileID.String)
		profileIDPtr = &p
	}

	exc := &exchange.Exchange{
		ID: parsedID,
		Request: exchange.RequestRecord{
			ID:        parsedID,
			ProfileID: profileIDPtr,
			RecipeID:  collection.RecipeID(recipeID),
			Method:    collection.Method(method),
			URL:       url,
			Headers:   reqHeaders,
			Body:      reqBody,
		},
		Response: exchange.ResponseRecord{
			StatusCode: int(statusCode.Int64),
			Headers:    respHeaders,
			Body:       respBody,
		},
		StartTime: startTime,
		EndTime:   endTime,
	}
	return collectionID, exc, nil
}

// LatestExchange returns the most recently completed exchange for
// (profileID, recipeID) under collectionID, ordered by end_time DESC
// (spec.md §4.3 "Latest exchange for (profile?, recipe)").
func (d *DB) LatestExchange(collectionID string, profileID *collection.ProfileID, recipeID collection.RecipeID) (*exchange.Exchange, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
SELECT id, collection_id, profile_id, recipe_id, method, request_url, request_headers, request_body,
       status_code, response_headers, response_body, start_time, end_time
FROM requests_v2
WHERE collection_id = ? AND recipe_id = ? AND status_code IS NOT NULL`
	args := []interface{}{collectionID, string(recipeID)}
	if profileID == nil {
		query += ` AND profile_id IS NULL`
	} else {
		query += ` AND profile_id = ?`
		args = append(args, string(*profileID))
	}
	query += ` ORDER BY end_time DESC LIMIT 1`

	row := d.db.QueryRow(query, args...)
	_, exc, err := scanExchangeRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		logging.Logger.Error("read latest exchange failed", "error", err)
		return nil, false
	}
	return exc, true
}

// ExchangeByID fetches a single durable exchange row by request id.
func (d *DB) ExchangeByID(collectionID, id string) (*exchange.Exchange, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	row := d.db.QueryRow(`
SELECT id, collection_id, profile_id, recipe_id, method, request_url, request_headers, request_body,
       status_code, response_headers, response_body, start_time, end_time
FROM requests_v2
WHERE collection_id = ? AND id = ?`, collectionID, id)
	_, exc, err := scanExchangeRow(row.Scan)
	if err != nil {
		return nil, false
	}
	return exc, true
}

// Summaries returns every durable exchange for (filter, recipeID) under
// collectionID, newest first (spec.md §4.3 "Summaries").
func (d *DB) Summaries(collectionID string, filter ProfileFilter, recipeID collection.RecipeID) ([]*exchange.Exchange, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `
SELECT id, collection_id, profile_id, recipe_id, method, request_url, request_headers, request_body,
       status_code, response_headers, response_body, start_time, end_time
FROM requests_v2
WHERE collection_id = ? AND recipe_id = ?`
	args := []interface{}{collectionID, string(recipeID)}
	switch filter.kind {
	case filterNone:
		query += ` AND profile_id IS NULL`
	case filterSome:
		query += ` AND profile_id = ?`
		args = append(args, string(filter.profileID))
	}
	query += ` ORDER BY start_time DESC`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query exchange summaries: %w", err)
	}
	defer rows.Close()

	var out []*exchange.Exchange
	for rows.Next() {
		_, exc, err := scanExchangeRow(rows.Scan)
		if err != nil {
			logging.Logger.Warn("skipping unreadable exchange row", "error", err)
			continue
		}
		out = append(out, exc)
	}
	return out, rows.Err()
}

// DeleteRequest removes a single exchange row by id.
func (d *DB) DeleteRequest(id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, err := d.db.Exec(`DELETE FROM requests_v2 WHERE id = ?`, id)
	return err
}

// DeleteRecipeRequests removes every durable row matching (collectionID,
// filter, recipeID) (spec.md §4.3 "Delete recipe requests").
func (d *DB) DeleteRecipeRequests(collectionID string, filter ProfileFilter, recipeID collection.RecipeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	query := `DELETE FROM requests_v2 WHERE collection_id = ? AND recipe_id = ?`
	args := []interface{}{collectionID, string(recipeID)}
	switch filter.kind {
	case filterNone:
		query += ` AND profile_id IS NULL`
	case filterSome:
		query += ` AND profile_id = ?`
		args = append(args, string(filter.profileID))
	}
	_, err := d.db.Exec(query, args...)
	return err
}

// --- ui_state_v2 access ---------------------------------------------------

// PutUIState upserts a UI-state value for (collectionID, keyType, key).
func (d *DB) PutUIState(collectionID, keyType, key string, value []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !json.Valid(value) {
		return fmt.Errorf("ui_state value must be valid JSON")
	}
	_, err := d.db.Exec(`INSERT OR REPLACE INTO ui_state_v2(collection_id, key_type, key, value) VALUES(?, ?, ?, ?)`,
		collectionID, keyType, key, string(value))
	return err
}

// GetUIState fetches a UI-state value, and true if present.
func (d *DB) GetUIState(collectionID, keyType, key string) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	row := d.db.QueryRow(`SELECT value FROM ui_state_v2 WHERE collection_id = ? AND key_type = ? AND key = ?`,
		collectionID, keyType, key)
	var value string
	if err := row.Scan(&value); err != nil {
		return nil, false
	}
	return []byte(value), true
}
