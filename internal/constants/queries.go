package constants

const (
	ListImportLogs = `
	SELECT id, imported_at, data_type, source, format, file_name, trust_level,
	       records_total, records_added, records_updated, records_skipped,
	       imported_by, status, warnings, errors
	FROM import_logs
	ORDER BY imported_at DESC
	LIMIT $1
	`

	ListImportLogsByType = `
	SELECT id, imported_at, data_type, source, format, file_name, trust_level,
	       records_total, records_added, records_updated, records_skipped,
	       imported_by, status, warnings, errors
	FROM import_logs
	WHERE data_type = $1
	ORDER BY imported_at DESC
	LIMIT $2
	`
)
