package postgres

const schema = `
CREATE TABLE IF NOT EXISTS stake_snapshots (
	run_id              TEXT        NOT NULL,
	observed_at         TIMESTAMPTZ NOT NULL,
	owner               TEXT        NOT NULL,
	lot_address         TEXT        NOT NULL,
	pool_address        TEXT        NOT NULL,
	pool_type           TEXT        NOT NULL,
	lot_index           BIGINT      NOT NULL,
	decimals            SMALLINT    NOT NULL,
	amount_raw          NUMERIC(78) NOT NULL,
	apy_bp              BIGINT      NOT NULL,
	last_deposit_time   BIGINT      NOT NULL,
	elapsed_seconds     BIGINT      NOT NULL,
	accrued_reward_raw  NUMERIC(78) NOT NULL,
	unlock_time         BIGINT      NOT NULL DEFAULT 0,
	unlock_in_seconds   BIGINT      NOT NULL DEFAULT 0,
	is_locked           BOOLEAN     NOT NULL,
	PRIMARY KEY (run_id, lot_address)
);

CREATE INDEX IF NOT EXISTS stake_snapshots_owner_observed_idx
	ON stake_snapshots (owner, observed_at DESC);

CREATE TABLE IF NOT EXISTS pool_stats (
	pool_address        TEXT        PRIMARY KEY,
	pool_type           TEXT        NOT NULL,
	mint                TEXT        NOT NULL,
	decimals            SMALLINT    NOT NULL,
	apy_bp              BIGINT      NOT NULL,
	lock_period_seconds BIGINT      NOT NULL,
	total_staked_raw    NUMERIC(78) NOT NULL,
	observed_at         TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS client_state (
	name       TEXT        PRIMARY KEY,
	state      JSONB       NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
