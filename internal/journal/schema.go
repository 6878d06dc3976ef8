package journal

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id TEXT PRIMARY KEY,
    started_at TIMESTAMP NOT NULL,
    finished_at TIMESTAMP,
    app_name TEXT NOT NULL,
    package_id TEXT,
    desired_state TEXT NOT NULL,
    changed BOOLEAN NOT NULL,
    action TEXT NOT NULL,
    message TEXT,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_app ON runs(app_name);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`
