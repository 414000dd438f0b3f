package usage

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Pricing per million tokens
const (
	PriceInputPerMillion  = 0.25
	PriceOutputPerMillion = 1.25
)

// monthLayout is the YYYY-MM bucket key
const monthLayout = "2006-01"

// Summary is the usage of one month
type Summary struct {
	Month         string  `json:"month"`
	Requests      int64   `json:"requests_count"`
	InputTokens   int64   `json:"input_tokens"`
	OutputTokens  int64   `json:"output_tokens"`
	TotalTokens   int64   `json:"total_tokens"`
	EstimatedCost float64 `json:"estimated_cost"`
}

// ActionCount is the number of requests for one action
type ActionCount struct {
	Action   string `json:"action"`
	Requests int64  `json:"requests"`
}

// Tracker records successful transformation requests in usage.db
type Tracker struct {
	conn *sql.DB
	now  func() time.Time
}

// Open opens the database and initializes the schema
func Open(configDir string) (*Tracker, error) {
	return OpenPath(filepath.Join(configDir, "usage.db"))
}

// OpenPath opens the database at an explicit path
func OpenPath(dbPath string) (*Tracker, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	t := &Tracker{conn: conn, now: time.Now}

	if err := t.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return t, nil
}

// Close closes the database connection
func (t *Tracker) Close() error {
	return t.conn.Close()
}

func (t *Tracker) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS requests (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp DATETIME NOT NULL,
		month TEXT NOT NULL,
		action TEXT NOT NULL,
		model TEXT NOT NULL,
		input_tokens INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_month ON requests(month);
	`

	_, err := t.conn.Exec(schema)
	return err
}

// Track records one request in the current month
func (t *Tracker) Track(action, model string, inputTokens, outputTokens int64) error {
	now := t.now()
	_, err := t.conn.Exec(
		`INSERT INTO requests (timestamp, month, action, model, input_tokens, output_tokens) VALUES (?, ?, ?, ?, ?, ?)`,
		now.UTC(), now.Format(monthLayout), action, model, inputTokens, outputTokens,
	)
	if err != nil {
		return fmt.Errorf("failed to track request: %w", err)
	}
	return nil
}

// CurrentMonth returns the YYYY-MM key of now
func (t *Tracker) CurrentMonth() string {
	return t.now().Format(monthLayout)
}

// Current returns the summary of the current month
func (t *Tracker) Current() (Summary, error) {
	return t.Summary(t.CurrentMonth())
}

// Summary returns the usage of month (YYYY-MM)
func (t *Tracker) Summary(month string) (Summary, error) {
	s := Summary{Month: month}
	err := t.conn.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(input_tokens), 0), COALESCE(SUM(output_tokens), 0)
		FROM requests
		WHERE month = ?
	`, month).Scan(&s.Requests, &s.InputTokens, &s.OutputTokens)
	if err != nil {
		return Summary{}, fmt.Errorf("failed to query usage: %w", err)
	}

	s.TotalTokens = s.InputTokens + s.OutputTokens
	s.EstimatedCost = EstimateCost(s.InputTokens, s.OutputTokens)
	return s, nil
}

// ByAction returns the request count per action for month, most used first
func (t *Tracker) ByAction(month string) ([]ActionCount, error) {
	rows, err := t.conn.Query(`
		SELECT action, COUNT(*) AS n
		FROM requests
		WHERE month = ?
		GROUP BY action
		ORDER BY n DESC, action ASC
	`, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query usage by action: %w", err)
	}
	defer rows.Close()

	var counts []ActionCount
	for rows.Next() {
		var c ActionCount
		if err := rows.Scan(&c.Action, &c.Requests); err != nil {
			return nil, fmt.Errorf("failed to scan usage: %w", err)
		}
		counts = append(counts, c)
	}
	return counts, rows.Err()
}

// Months returns every month with recorded usage, newest first
func (t *Tracker) Months() ([]string, error) {
	rows, err := t.conn.Query(`SELECT DISTINCT month FROM requests ORDER BY month DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query months: %w", err)
	}
	defer rows.Close()

	var months []string
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("failed to scan month: %w", err)
		}
		months = append(months, m)
	}
	return months, rows.Err()
}

// Reset deletes the records of month
func (t *Tracker) Reset(month string) error {
	if _, err := t.conn.Exec(`DELETE FROM requests WHERE month = ?`, month); err != nil {
		return fmt.Errorf("failed to reset usage: %w", err)
	}
	return nil
}

// EstimateCost returns the estimated cost in dollars
func EstimateCost(inputTokens, outputTokens int64) float64 {
	return float64(inputTokens)/1_000_000*PriceInputPerMillion +
		float64(outputTokens)/1_000_000*PriceOutputPerMillion
}

// FormatDisplay formats a summary for the tray menu, e.g. "150 req • ~$2.50"
func FormatDisplay(s Summary) string {
	cost := "<$0.01"
	if s.EstimatedCost >= 0.01 {
		cost = fmt.Sprintf("~$%.2f", s.EstimatedCost)
	}
	return fmt.Sprintf("%d req • %s", s.Requests, cost)
}
