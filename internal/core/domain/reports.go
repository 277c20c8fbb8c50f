package domain

// ColumnFailure records an additive column that could not be added.
type ColumnFailure struct {
	Table  string
	Column string
	Err    error
}

// MigrationReport describes one schema migration pass.
// Failures were logged; the table continues without the column.
type MigrationReport struct {
	// Added lists "Table.Column" for each column created by this pass.
	Added []string

	// Failed lists columns the pass could not add.
	Failed []ColumnFailure
}

// Changed reports whether the pass altered the schema.
func (r MigrationReport) Changed() bool {
	return len(r.Added) > 0
}

// SecretReport describes one secret re-protection pass.
type SecretReport struct {
	// Scanned counts rows inspected across all secret-bearing tables.
	Scanned int

	// Protected counts rows rewritten in protected form.
	Protected int

	// Failed counts rows whose rewrite failed; they are retried on the next pass.
	Failed int
}

// StartupReport combines the outcomes of the startup sequence.
type StartupReport struct {
	Migration MigrationReport
	Secrets   SecretReport

	// SecretsErr is set when the secret pass could not run at all.
	SecretsErr error
}
