package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/dtnitsch/chatty/pkg/mapreduce"
)

const (
	kindSiteTag   = "site_tag"
	kindTotalTag  = "total_tag"
	kindTotalSite = "total_site"
)

// SaveReport writes a finished report in one transaction and returns its report_id.
func (db *DB) SaveReport(runID string, r mapreduce.Report) (reportID int64, err error) {
	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback() // Rollback error less important than the original one
		}
	}()

	res, err := tx.Exec(`INSERT INTO reports (run_id, registry_id) VALUES (?, ?)`, runID, r.RegistryID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}
	reportID, err = res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get report ID: %w", err)
	}

	for _, name := range sortedKeys(r.Sites) {
		site := r.Sites[name]
		res, err := tx.Exec(`
			INSERT INTO sites (report_id, name, questions, words)
			VALUES (?, ?, ?, ?)
		`, reportID, name, site.Questions, site.Words)
		if err != nil {
			return 0, fmt.Errorf("failed to insert site %s: %w", name, err)
		}
		siteID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to get site ID: %w", err)
		}

		for _, tag := range sortedKeys(site.Tags) {
			c := site.Tags[tag]
			if _, err := tx.Exec(`
				INSERT INTO site_tags (site_id, tag, questions, words)
				VALUES (?, ?, ?, ?)
			`, siteID, tag, c.Questions, c.Words); err != nil {
				return 0, fmt.Errorf("failed to insert tag %s of site %s: %w", tag, name, err)
			}
		}

		if err := insertChatty(tx, reportID, kindSiteTag, name, site.ChattyTags); err != nil {
			return 0, err
		}
	}

	for _, tag := range sortedKeys(r.Tags) {
		c := r.Tags[tag]
		if _, err := tx.Exec(`
			INSERT INTO tags (report_id, tag, questions, words)
			VALUES (?, ?, ?, ?)
		`, reportID, tag, c.Questions, c.Words); err != nil {
			return 0, fmt.Errorf("failed to insert tag %s: %w", tag, err)
		}
	}

	if err := insertChatty(tx, reportID, kindTotalTag, "", r.Totals.ChattyTags); err != nil {
		return 0, err
	}
	if err := insertChatty(tx, reportID, kindTotalSite, "", r.Totals.ChattySites); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit report: %w", err)
	}
	return reportID, nil
}

func insertChatty(tx *sql.Tx, reportID int64, kind, scope string, names []string) error {
	for i, name := range names {
		if _, err := tx.Exec(`
			INSERT INTO chatty (report_id, kind, scope, position, name)
			VALUES (?, ?, ?, ?, ?)
		`, reportID, kind, scope, i, name); err != nil {
			return fmt.Errorf("failed to insert %s entry %d: %w", kind, i, err)
		}
	}
	return nil
}

// LoadReport reads a report back from the export.
func (db *DB) LoadReport(reportID int64) (mapreduce.Report, error) {
	var registryID uint32
	err := db.QueryRow("SELECT registry_id FROM reports WHERE report_id = ?", reportID).Scan(&registryID)
	if errors.Is(err, sql.ErrNoRows) {
		return mapreduce.Report{}, fmt.Errorf("report %d not found", reportID)
	}
	if err != nil {
		return mapreduce.Report{}, fmt.Errorf("failed to get report: %w", err)
	}

	r := mapreduce.NewReport(registryID)

	rows, err := db.Query(`
		SELECT s.name, s.questions, s.words, st.tag, st.questions, st.words
		FROM sites s
		LEFT JOIN site_tags st ON st.site_id = s.site_id
		WHERE s.report_id = ?
	`, reportID)
	if err != nil {
		return mapreduce.Report{}, fmt.Errorf("failed to query sites: %w", err)
	}
	for rows.Next() {
		var (
			name   string
			site   mapreduce.SiteAggregate
			tag    sql.NullString
			tq, tw sql.NullInt64
		)
		if err := rows.Scan(&name, &site.Questions, &site.Words, &tag, &tq, &tw); err != nil {
			_ = rows.Close()
			return mapreduce.Report{}, fmt.Errorf("failed to scan site: %w", err)
		}
		cur, ok := r.Sites[name]
		if !ok {
			cur = mapreduce.SiteAggregate{
				Questions:  site.Questions,
				Words:      site.Words,
				Tags:       make(map[string]mapreduce.Counter),
				ChattyTags: []string{},
			}
		}
		if tag.Valid {
			cur.Tags[tag.String] = mapreduce.Counter{Questions: uint32(tq.Int64), Words: uint32(tw.Int64)}
		}
		r.Sites[name] = cur
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return mapreduce.Report{}, fmt.Errorf("failed to read sites: %w", err)
	}
	_ = rows.Close()

	rows, err = db.Query("SELECT tag, questions, words FROM tags WHERE report_id = ?", reportID)
	if err != nil {
		return mapreduce.Report{}, fmt.Errorf("failed to query tags: %w", err)
	}
	for rows.Next() {
		var tag string
		var c mapreduce.Counter
		if err := rows.Scan(&tag, &c.Questions, &c.Words); err != nil {
			_ = rows.Close()
			return mapreduce.Report{}, fmt.Errorf("failed to scan tag: %w", err)
		}
		r.Tags[tag] = c
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return mapreduce.Report{}, fmt.Errorf("failed to read tags: %w", err)
	}
	_ = rows.Close()

	r.Totals = mapreduce.Totals{ChattySites: []string{}, ChattyTags: []string{}}
	rows, err = db.Query(`
		SELECT kind, scope, name FROM chatty
		WHERE report_id = ?
		ORDER BY kind, scope, position
	`, reportID)
	if err != nil {
		return mapreduce.Report{}, fmt.Errorf("failed to query chatty lists: %w", err)
	}
	for rows.Next() {
		var kind, scope, name string
		if err := rows.Scan(&kind, &scope, &name); err != nil {
			_ = rows.Close()
			return mapreduce.Report{}, fmt.Errorf("failed to scan chatty entry: %w", err)
		}
		switch kind {
		case kindSiteTag:
			site := r.Sites[scope]
			site.ChattyTags = append(site.ChattyTags, name)
			r.Sites[scope] = site
		case kindTotalTag:
			r.Totals.ChattyTags = append(r.Totals.ChattyTags, name)
		case kindTotalSite:
			r.Totals.ChattySites = append(r.Totals.ChattySites, name)
		}
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return mapreduce.Report{}, fmt.Errorf("failed to read chatty lists: %w", err)
	}
	_ = rows.Close()

	return r, nil
}

// GetReportIDByRunID looks up the row written for a run.
func (db *DB) GetReportIDByRunID(runID string) (int64, error) {
	var id int64
	err := db.QueryRow("SELECT report_id FROM reports WHERE run_id = ?", runID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("no report for run %s", runID)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get report ID: %w", err)
	}
	return id, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
