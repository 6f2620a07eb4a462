package core

import "time"

// Review is the persisted record of a published council review.
type Review struct {
	ID           int64     `db:"id"`
	RunID        string    `db:"run_id"`
	RepoFullName string    `db:"repo_full_name"`
	PRNumber     int       `db:"pr_number"`
	HeadSHA      string    `db:"head_sha"`
	TriggeredBy  string    `db:"triggered_by"`
	Risk         string    `db:"risk"`
	Annotations  int       `db:"annotations"`
	ReportJSON   []byte    `db:"report_json"`
	CreatedAt    time.Time `db:"created_at"`
}
