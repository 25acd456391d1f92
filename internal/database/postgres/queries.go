package postgres

// SQL queries for PostgreSQL catalog introspection.
const (
	queryListDatabases = `
		SELECT datname
		FROM pg_database
		WHERE NOT datistemplate
		  AND datallowconn
		ORDER BY datname`

	queryListTables = `
		SELECT table_schema, table_name
		FROM information_schema.tables
		WHERE table_schema NOT IN ('pg_catalog', 'information_schema')
		  AND table_schema NOT LIKE 'pg_toast%'
		  AND table_type = 'BASE TABLE'
		ORDER BY table_schema, table_name`

	queryDescribeTable = `
		SELECT
			a.attname,
			format_type(a.atttypid, a.atttypmod),
			NOT a.attnotnull,
			COALESCE(pg_get_expr(d.adbin, d.adrelid), ''),
			d.adbin IS NOT NULL,
			COALESCE((
				SELECT string_agg(DISTINCT con.contype::text, '')
				FROM pg_constraint con
				WHERE con.conrelid = a.attrelid
				  AND a.attnum = ANY (con.conkey)
			), '')
		FROM pg_attribute a
		JOIN pg_class c ON c.oid = a.attrelid
		JOIN pg_namespace n ON n.oid = c.relnamespace
		LEFT JOIN pg_attrdef d ON d.adrelid = a.attrelid AND d.adnum = a.attnum
		WHERE n.nspname = $1
		  AND c.relname = $2
		  AND a.attnum > 0
		  AND NOT a.attisdropped
		ORDER BY a.attnum`
)
