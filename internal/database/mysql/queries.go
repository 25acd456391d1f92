package mysql

// SQL queries for MySQL catalog introspection.
const (
	queryListDatabases = `
		SELECT schema_name
		FROM information_schema.schemata
		ORDER BY schema_name`

	queryListTables = `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`

	queryDescribeTable = `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			COALESCE((
				SELECT GROUP_CONCAT(DISTINCT tc.constraint_type SEPARATOR ',')
				FROM information_schema.key_column_usage k
				JOIN information_schema.table_constraints tc
					ON tc.constraint_schema = k.constraint_schema
					AND tc.constraint_name = k.constraint_name
					AND tc.table_name = k.table_name
				WHERE k.table_schema = c.table_schema
				  AND k.table_name = c.table_name
				  AND k.column_name = c.column_name
			), '')
		FROM information_schema.columns c
		WHERE c.table_schema = ?
		  AND c.table_name = ?
		ORDER BY c.ordinal_position`
)
