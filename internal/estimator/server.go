/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package estimator

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"database/sql"
	"embed"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"sort"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"fencestudio/internal/catalog"
	"fencestudio/internal/domain"
	applog "fencestudio/internal/log"
	"fencestudio/internal/version"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Config holds server configuration.
type Config struct {
	DBURL string // optional; built-in rate card is used without it
	Addr  string // http bind address, e.g., ":8080"
}

func loadConfig() Config {
	cfg := Config{
		DBURL: os.Getenv("DATABASE_URL"),
		Addr:  ":8080",
	}
	if v := os.Getenv("FS_PG_DSN"); v != "" {
		cfg.DBURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Addr = ":" + v
	}
	if v := os.Getenv("ADDR"); v != "" {
		cfg.Addr = v
	}
	return cfg
}

// Start runs the calculation service. The pricing database is optional: when
// no DSN is configured or the database is unreachable the built-in rate card
// serves requests, matching the calculation the client's fallback expects to
// be replaced by.
func Start() error {
	cfg := loadConfig()
	logger := applog.WithComponent("estimator")
	eng := NewEngine()

	var db *sql.DB
	if cfg.DBURL != "" {
		var err error
		db, err = openPricingDB(cfg.DBURL, eng, logger)
		if err != nil {
			logger.Warn("pricing database unavailable, using built-in rate card", slog.Any("err", err))
			db = nil
		}
	}
	if db != nil {
		defer func() {
			if err := db.Close(); err != nil {
				logger.Error("db close", slog.Any("err", err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           NewHandler(eng, db),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("fence-estimatord listening", slog.String("addr", cfg.Addr))
	return srv.ListenAndServe()
}

func openPricingDB(dsn string, eng *Engine, logger *slog.Logger) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if err := applyMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	n, err := loadPricing(ctx, db, eng)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("load pricing: %w", err)
	}
	logger.Info("pricing loaded from database", slog.Int("styles", n))
	return db, nil
}

// loadPricing overlays rate-card rows from the database onto the engine's
// built-in defaults.
func loadPricing(ctx context.Context, db *sql.DB, eng *Engine) (int, error) {
	rows, err := db.QueryContext(ctx, `SELECT style_id, base, per_foot, labor_per_foot FROM fence_pricing`)
	if err != nil {
		return 0, err
	}
	defer rows.Close()
	n := 0
	for rows.Next() {
		var id string
		var p Pricing
		if err := rows.Scan(&id, &p.Base, &p.PerFoot, &p.LaborPerFoot); err != nil {
			return n, err
		}
		eng.SetPricing(id, p)
		n++
	}
	return n, rows.Err()
}

// applyMigrations applies embedded SQL migrations in filename order.
func applyMigrations(ctx context.Context, db *sql.DB) error {
	entries, err := migrationsFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(strings.ToLower(e.Name()), ".sql") {
			files = append(files, e.Name())
		}
	}
	sort.Strings(files)
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`); err != nil {
		return fmt.Errorf("ensure schema_migrations: %w", err)
	}
	for _, fname := range files {
		var exists bool
		if err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, fname).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}
		b, err := migrationsFS.ReadFile(path.Join("migrations", fname))
		if err != nil {
			return err
		}
		if strings.TrimSpace(string(b)) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, string(b)); err != nil {
			return fmt.Errorf("apply %s: %w", fname, err)
		}
		if _, err := db.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, fname); err != nil {
			return err
		}
	}
	return nil
}

// NewHandler builds the service mux. db may be nil (no readiness ping, no
// pricing reloads).
func NewHandler(eng *Engine, db *sql.DB) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.PingContext(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = w.Write([]byte("db not ready"))
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("fence-estimatord " + version.String()))
	})

	secret := os.Getenv("FS_AUTH_SECRET")
	if secret == "" {
		secret = "dev-secret-change-me"
	}

	// POST /api/auth/token → { token, expires_at }. The drawing client keeps
	// the token in the system keyring and presents it as a bearer header.
	mux.HandleFunc("/api/auth/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req struct {
			Subject    string `json:"subject"`
			TTLSeconds int64  `json:"ttl_seconds"`
		}
		b, _ := io.ReadAll(io.LimitReader(r.Body, 1<<20))
		_ = r.Body.Close()
		_ = json.Unmarshal(b, &req)
		if req.Subject == "" {
			req.Subject = "dev"
		}
		if req.TTLSeconds <= 0 || req.TTLSeconds > 24*3600 {
			req.TTLSeconds = 3600
		}
		exp := time.Now().Add(time.Duration(req.TTLSeconds) * time.Second)
		tok, err := signToken(secret, req.Subject, exp)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"token":      tok,
			"expires_at": exp.UTC().Format(time.RFC3339),
		})
	})

	// Bearer auth on the calculation endpoints is opt-in; the public deploy
	// serves guests, matching the drawing client's optional token.
	requireAuth := os.Getenv("FS_AUTH_REQUIRED") == "1"
	guard := func(next http.HandlerFunc) http.HandlerFunc {
		if !requireAuth {
			return next
		}
		return withAuth(secret, next)
	}

	// POST /api/fence/calculate
	mux.HandleFunc("/api/fence/calculate", guard(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req domain.CalcRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Result{Error: err.Error()})
			return
		}
		res := eng.Calculate(req, catalog.DefaultStyleID)
		writeJSON(w, http.StatusOK, res)
	}))

	// GET /api/fence/specifications?style=vinyl-privacy
	mux.HandleFunc("/api/fence/specifications", func(w http.ResponseWriter, r *http.Request) {
		style := r.URL.Query().Get("style")
		specs, ok := eng.SpecsFor(style)
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{
				"success": false,
				"error":   "fence style not found",
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        true,
			"specifications": specs,
		})
	})

	// POST /api/fence/optimize
	mux.HandleFunc("/api/fence/optimize", guard(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req domain.CalcRequest
		if err := decodeJSON(r, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, Result{Error: err.Error()})
			return
		}
		res := eng.Calculate(req, catalog.DefaultStyleID)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":        res.Success,
			"current_result": res,
			"suggestions":    Suggest(res),
		})
	}))

	return mux
}

func withAuth(secret string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("missing bearer token"))
			return
		}
		if _, err := verifyToken(secret, strings.TrimSpace(auth[len(prefix):])); err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("invalid token"))
			return
		}
		next(w, r)
	}
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(io.LimitReader(r.Body, 8<<20))
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}
	return nil
}

// --- Helpers: auth and JSON ---

type tokenClaims struct {
	Sub string `json:"sub"`
	Exp int64  `json:"exp"` // unix seconds
}

func signToken(secret, subject string, exp time.Time) (string, error) {
	claims := tokenClaims{Sub: subject, Exp: exp.Unix()}
	b, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write(b)
	sig := h.Sum(nil)
	return base64.RawURLEncoding.EncodeToString(b) + "." + base64.RawURLEncoding.EncodeToString(sig), nil
}

func verifyToken(secret, token string) (string, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid token format")
	}
	payloadB, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid token payload")
	}
	sigB, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("invalid token signature")
	}
	h := hmac.New(sha256.New, []byte(secret))
	_, _ = h.Write(payloadB)
	if !hmac.Equal(h.Sum(nil), sigB) {
		return "", fmt.Errorf("bad signature")
	}
	var claims tokenClaims
	if err := json.Unmarshal(payloadB, &claims); err != nil {
		return "", fmt.Errorf("bad claims")
	}
	if claims.Exp < time.Now().Unix() {
		return "", fmt.Errorf("token expired")
	}
	if claims.Sub == "" {
		claims.Sub = "dev"
	}
	return claims.Sub, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]any{"error": err.Error()})
}
