package db

const schema = `
PRAGMA foreign_keys = ON;
PRAGMA temp_store = MEMORY;

-- Reports: one row per exported run
CREATE TABLE IF NOT EXISTS reports (
    report_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL UNIQUE,
    registry_id INTEGER NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

-- Sites: per-site totals
CREATE TABLE IF NOT EXISTS sites (
    site_id INTEGER PRIMARY KEY AUTOINCREMENT,
    report_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    questions INTEGER NOT NULL,
    words INTEGER NOT NULL,
    FOREIGN KEY (report_id) REFERENCES reports(report_id) ON DELETE CASCADE,
    UNIQUE(report_id, name)
);

CREATE INDEX IF NOT EXISTS idx_sites_report ON sites(report_id);

-- Site tags: tag counters scoped to one site
CREATE TABLE IF NOT EXISTS site_tags (
    site_id INTEGER NOT NULL,
    tag TEXT NOT NULL,
    questions INTEGER NOT NULL,
    words INTEGER NOT NULL,
    FOREIGN KEY (site_id) REFERENCES sites(site_id) ON DELETE CASCADE,
    PRIMARY KEY (site_id, tag)
);

-- Tags: global tag counters across all sites
CREATE TABLE IF NOT EXISTS tags (
    report_id INTEGER NOT NULL,
    tag TEXT NOT NULL,
    questions INTEGER NOT NULL,
    words INTEGER NOT NULL,
    FOREIGN KEY (report_id) REFERENCES reports(report_id) ON DELETE CASCADE,
    PRIMARY KEY (report_id, tag)
);

-- Chatty: ranked lists. kind is site_tag (scope = site name), total_tag or total_site (scope = '')
CREATE TABLE IF NOT EXISTS chatty (
    report_id INTEGER NOT NULL,
    kind TEXT NOT NULL CHECK (kind IN ('site_tag', 'total_tag', 'total_site')),
    scope TEXT NOT NULL DEFAULT '',
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    FOREIGN KEY (report_id) REFERENCES reports(report_id) ON DELETE CASCADE,
    PRIMARY KEY (report_id, kind, scope, position)
);
`
