package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skyline/opsboard/internal/common"
	"skyline/opsboard/internal/config"
	"skyline/opsboard/internal/constants"
	"skyline/opsboard/internal/metrics"
	gormModels "skyline/opsboard/internal/models/gorm"
	"skyline/opsboard/internal/reconcile"
)

// Setup test database
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	// One connection, otherwise every pool connection gets its own empty database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(gormModels.All()...))
	return db
}

func testConfig() *config.Config {
	return &config.Config{
		FuzzyMatchThreshold: 70,
		ConflictMode:        constants.ConflictWarn,
		ExactPriorityMark:   100,
		RuleCacheTTL:        time.Minute,
	}
}

func newTestServices(t *testing.T, db *gorm.DB) (*ImportService, *MappingRuleService) {
	t.Helper()
	cfg := testConfig()
	m := metrics.NewMetricsRegistry(prometheus.NewRegistry())
	rules := NewMappingRuleService(db, common.NewMemoryCache(time.Minute, time.Minute), cfg, m)
	return NewImportService(db, rules, cfg, m), rules
}

func customerInput(content string) ImportInput {
	return ImportInput{
		Kind:    constants.KindCustomer,
		Format:  constants.FormatCSV,
		Content: []byte(content),
		Channel: constants.ChannelFile,
		UserID:  "user-1",
	}
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}

func importLogs(t *testing.T, db *gorm.DB) []gormModels.ImportLog {
	t.Helper()
	var logs []gormModels.ImportLog
	require.NoError(t, db.Order("imported_at ASC").Find(&logs).Error)
	return logs
}

func TestImportService_CommitIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(t, db)
	ctx := context.Background()
	in := customerInput("name,short_name\nCathay Pacific,CX\nLufthansa,LH\n")

	first, err := svc.Commit(ctx, in)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.NotEmpty(t, first.LogID)
	assert.Equal(t, 2, first.Summary.Added)

	again, err := svc.ValidateCustomers(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Summary.ToAdd)
	assert.Equal(t, 0, again.Summary.ToUpdate)
	assert.Equal(t, 2, again.Summary.Unchanged)

	second, err := svc.Commit(ctx, in)
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.Equal(t, 0, second.Summary.Added)
	assert.Equal(t, 0, second.Summary.Updated)
	assert.Equal(t, 2, second.Summary.Skipped)

	assert.Equal(t, int64(2), countRows(t, db, &gormModels.Customer{}))

	logs := importLogs(t, db)
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, string(constants.ImportStatusSuccess), l.Status)
		assert.Equal(t, "customer", l.DataType)
		assert.Equal(t, "file", l.Source)
		assert.Equal(t, "user-1", l.ImportedBy)
	}
}

func TestImportService_RenameThenReuseOldNameIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(t, db)
	ctx := context.Background()

	guid := "G1"
	require.NoError(t, db.Create(&gormModels.Customer{
		Name: "Old", GUID: &guid, Color: constants.CustomerPalette[0], Source: constants.SourceImported, IsActive: true,
	}).Error)
	in := customerInput("name,guid\nNew,G1\nOld,\n")

	preview, err := svc.ValidateCustomers(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 1, preview.Summary.ToAdd)
	assert.Equal(t, 1, preview.Summary.ToUpdate)

	res, err := svc.Commit(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.Summary.Added)
	assert.Equal(t, 1, res.Summary.Updated)

	var names []string
	require.NoError(t, db.Model(&gormModels.Customer{}).Order("id").Pluck("name", &names).Error)
	assert.Equal(t, []string{"New", "Old"}, names)

	again, err := svc.ValidateCustomers(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Summary.ToAdd)
	assert.Equal(t, 0, again.Summary.ToUpdate)
	assert.Equal(t, 2, again.Summary.Unchanged)
}

func TestImportService_ValidateDoesNotWrite(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(t, db)

	res, err := svc.Validate(context.Background(), customerInput("name\nAcme\n"))
	require.NoError(t, err)
	assert.IsType(t, reconcile.CustomerResult{}, res)
	assert.Equal(t, int64(0), countRows(t, db, &gormModels.Customer{}))
	assert.Equal(t, int64(0), countRows(t, db, &gormModels.ImportLog{}))
}

func TestImportService_AssignsDistinctColors(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(t, db)
	ctx := context.Background()

	require.NoError(t, db.Create(&gormModels.Customer{
		Name: "Existing", Color: constants.CustomerPalette[0], Source: constants.SourceImported, IsActive: true,
	}).Error)

	res, err := svc.Commit(ctx, customerInput("name\nAlpha\nBravo\nCharlie\n"))
	require.NoError(t, err)
	require.True(t, res.Success)

	var added []gormModels.Customer
	require.NoError(t, db.Where("name <> ?", "Existing").Order("id ASC").Find(&added).Error)
	require.Len(t, added, 3)

	assert.Equal(t, constants.CustomerPalette[1], added[0].Color)
	assert.Equal(t, constants.CustomerPalette[2], added[1].Color)
	assert.Equal(t, constants.CustomerPalette[3], added[2].Color)
}

func TestImportService_ConflictModes(t *testing.T) {
	seed := func(t *testing.T, db *gorm.DB) {
		require.NoError(t, db.Create(&gormModels.Customer{
			Name: "Acme", ShortName: "AC", Source: constants.SourceConfirmed, IsActive: true,
		}).Error)
	}
	load := func(t *testing.T, db *gorm.DB) gormModels.Customer {
		var c gormModels.Customer
		require.NoError(t, db.Where("name = ?", "Acme").First(&c).Error)
		return c
	}
	payload := "name,short_name\nAcme,ACM\n"

	t.Run("reject blocks without override", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		svc, _ := newTestServices(t, db)

		in := customerInput(payload)
		in.ConflictMode = constants.ConflictReject
		res, err := svc.Commit(context.Background(), in)
		require.ErrorIs(t, err, ErrCommitBlocked)
		assert.False(t, res.Success)
		assert.NotEmpty(t, res.LogID)

		c := load(t, db)
		assert.Equal(t, "AC", c.ShortName)
		assert.Equal(t, constants.SourceConfirmed, c.Source)

		logs := importLogs(t, db)
		require.Len(t, logs, 1)
		assert.Equal(t, string(constants.ImportStatusFailed), logs[0].Status)
		assert.Contains(t, logs[0].Errors, "rejected")
	})

	t.Run("reject with override applies", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		svc, _ := newTestServices(t, db)

		in := customerInput(payload)
		in.ConflictMode = constants.ConflictReject
		in.OverrideConflicts = true
		res, err := svc.Commit(context.Background(), in)
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 1, res.Summary.Updated)

		c := load(t, db)
		assert.Equal(t, "ACM", c.ShortName)
		assert.Equal(t, constants.SourceImported, c.Source)
	})

	t.Run("warn downgrades with a warning", func(t *testing.T) {
		db := setupTestDB(t)
		seed(t, db)
		svc, _ := newTestServices(t, db)

		res, err := svc.Commit(context.Background(), customerInput(payload))
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.Equal(t, 1, res.Summary.Updated)
		assert.Contains(t, res.Warnings, `row 1: "Acme" is confirmed, update downgrades it to imported`)

		c := load(t, db)
		assert.Equal(t, "ACM", c.ShortName)
		assert.Equal(t, constants.SourceImported, c.Source)
	})
}

func TestImportService_CommitRollsBackOnStoreFailure(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(t, db)

	inserts := 0
	err := db.Callback().Create().Before("gorm:create").Register("test:fail_second_customer", func(tx *gorm.DB) {
		if tx.Statement.Schema == nil || tx.Statement.Schema.Table != "customers" {
			return
		}
		inserts++
		if inserts == 2 {
			_ = tx.AddError(errors.New("simulated store failure"))
		}
	})
	require.NoError(t, err)

	res, err := svc.Commit(context.Background(), customerInput("name\nAlpha\nBravo\nCharlie\n"))
	require.ErrorIs(t, err, ErrCommitFailed)
	require.NotNil(t, res)
	assert.False(t, res.Success)
	assert.Equal(t, 3, res.Summary.Skipped)

	assert.Equal(t, int64(0), countRows(t, db, &gormModels.Customer{}))

	logs := importLogs(t, db)
	require.Len(t, logs, 1)
	assert.Equal(t, string(constants.ImportStatusFailed), logs[0].Status)
	assert.Equal(t, 0, logs[0].RecordsAdded)
	assert.Contains(t, logs[0].Errors, "simulated store failure")
	assert.Equal(t, logs[0].ID, res.LogID)
}

func TestImportService_TrustedPreview(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(t, db)
	ctx := context.Background()

	preview, err := svc.ValidateCustomers(ctx, customerInput("name\nAlpha\nBravo\n"))
	require.NoError(t, err)
	raw, err := json.Marshal(preview)
	require.NoError(t, err)

	in := customerInput("")
	in.Preview = raw
	in.TrustPreview = true
	res, err := svc.Commit(ctx, in)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.Summary.Added)

	in.Preview = json.RawMessage(`{"valid": "nope"}`)
	_, err = svc.Commit(ctx, in)
	assert.ErrorIs(t, err, ErrInvalidPreview)
}

func TestImportService_RejectsBadInput(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestServices(t, db)
	ctx := context.Background()

	in := customerInput("name\nAcme\n")
	in.UserID = " "
	_, err := svc.Commit(ctx, in)
	assert.ErrorIs(t, err, ErrMissingUser)

	in = customerInput("name\nAcme\n")
	in.Kind = "engine"
	_, err = svc.Commit(ctx, in)
	assert.ErrorIs(t, err, ErrUnknownKind)

	in = customerInput("name\nAcme\n")
	in.Format = "xml"
	_, err = svc.Validate(ctx, in)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	assert.Equal(t, int64(0), countRows(t, db, &gormModels.ImportLog{}))
}

func TestImportService_AircraftImport(t *testing.T) {
	db := setupTestDB(t)
	svc, rules := newTestServices(t, db)
	ctx := context.Background()

	_, err := rules.ResetToDefaults(ctx)
	require.NoError(t, err)

	cathay := gormModels.Customer{Name: "Cathay Pacific", ShortName: "CX", Source: constants.SourceConfirmed, IsActive: true}
	require.NoError(t, db.Create(&cathay).Error)
	model := gormModels.AircraftModel{Name: "A330-343"}
	require.NoError(t, db.Create(&model).Error)

	in := ImportInput{
		Kind:    constants.KindAircraft,
		Format:  constants.FormatCSV,
		Content: []byte("registration,model,operator\nb-hla,A330-343,cathay  pacific\nB-XYZ,B777-367ER,Nowhere Freight Services\n"),
		Channel: constants.ChannelPaste,
		UserID:  "user-2",
	}

	preview, err := svc.ValidateAircraft(ctx, in)
	require.NoError(t, err)
	require.NotNil(t, preview.Summary.InvalidOperators)
	assert.Equal(t, 1, *preview.Summary.InvalidOperators)
	assert.Equal(t, 2, preview.Summary.ToAdd)

	res, err := svc.Commit(ctx, in)
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, 2, res.Summary.Added)

	var hla, xyz gormModels.Aircraft
	require.NoError(t, db.Where("registration = ?", "B-HLA").First(&hla).Error)
	require.NoError(t, db.Where("registration = ?", "B-XYZ").First(&xyz).Error)

	require.NotNil(t, hla.OperatorID)
	assert.Equal(t, cathay.ID, *hla.OperatorID)
	assert.Equal(t, 100, hla.OperatorMatchConfidence)
	require.NotNil(t, hla.ModelID)
	assert.Equal(t, model.ID, *hla.ModelID)
	assert.Equal(t, string(constants.TypeA330), hla.CanonicalType)

	assert.Nil(t, xyz.OperatorID)
	assert.Equal(t, "Nowhere Freight Services", xyz.OperatorRaw)
	assert.Nil(t, xyz.ModelID)
	assert.Equal(t, string(constants.TypeB777), xyz.CanonicalType)

	again, err := svc.ValidateAircraft(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Summary.ToAdd)
	assert.Equal(t, 2, again.Summary.Unchanged)
}
