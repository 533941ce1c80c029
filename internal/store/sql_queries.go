package store

// Prepared query texts for the fixed-shape statements. Dynamic statements
// (backup upsert and listing) are built with squirrel in the backup
// repository instead.
const (
	createAccount = `INSERT INTO accounts (login, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING account_id, login, password_hash, role, created_at;`

	findAccountByLogin = `SELECT account_id, login, password_hash, role, created_at
		FROM accounts
		WHERE login = $1;`

	findAccountByID = `SELECT account_id, login, password_hash, role, created_at
		FROM accounts
		WHERE account_id = $1;`

	updateAccountPassword = `UPDATE accounts
		SET password_hash = $2
		WHERE account_id = $1;`

	getSnapshot = `SELECT body
		FROM snapshots
		WHERE account_id = $1;`

	putSnapshot = `INSERT INTO snapshots (account_id, body, updated_at, device_id, stored_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (account_id)
		DO UPDATE SET body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at,
			device_id = EXCLUDED.device_id,
			stored_at = NOW();`

	getBackup = `SELECT body
		FROM backups
		WHERE account_id = $1 AND backup_id = $2;`

	deleteBackup = `DELETE FROM backups
		WHERE account_id = $1 AND backup_id = $2;`
)
