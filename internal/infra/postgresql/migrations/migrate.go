package migrations

import (
	"github.com/gfmartins/agroalert/internal/repository"
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		createFarmsAndPeople(),
		createDocuments(),
		createDebts(),
		createSendRecords(),
	})

	return m.Migrate()
}

func createFarmsAndPeople() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000001_create_farms_and_people",
		Migrate: func(tx *gorm.DB) error {
			return tx.AutoMigrate(&repository.FarmModel{}, &repository.PersonModel{})
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.PersonModel{}, &repository.FarmModel{})
		},
	}
}

func createDocuments() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000002_create_documents",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.DocumentModel{}); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_documents_due_date ON documents (due_date) WHERE due_date IS NOT NULL`,
				`CREATE INDEX IF NOT EXISTS idx_documents_farm_id ON documents (farm_id) WHERE farm_id IS NOT NULL`,
				`CREATE INDEX IF NOT EXISTS idx_documents_person_id ON documents (person_id) WHERE person_id IS NOT NULL`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.DocumentModel{})
		},
	}
}

func createDebts() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000003_create_debts",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(
				&repository.DebtModel{},
				&repository.InstallmentModel{},
				&repository.DebtAlertConfigModel{},
			); err != nil {
				return err
			}
			indexes := []string{
				`CREATE INDEX IF NOT EXISTS idx_debts_final_due_date ON debts (final_due_date)`,
				`CREATE INDEX IF NOT EXISTS idx_installments_debt_id ON installments (debt_id)`,
				`CREATE INDEX IF NOT EXISTS idx_debt_alert_configs_active ON debt_alert_configs (debt_id) WHERE active`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(
				&repository.DebtAlertConfigModel{},
				&repository.InstallmentModel{},
				&repository.DebtModel{},
			)
		},
	}
}

func createSendRecords() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_send_records",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.AutoMigrate(&repository.SendRecordModel{}); err != nil {
				return err
			}
			indexes := []string{
				// At most one success row per (kind, deadline, threshold);
				// failed attempts may pile up for audit.
				`CREATE UNIQUE INDEX IF NOT EXISTS idx_send_records_success_key ON send_records (deadline_kind, deadline_id, threshold_key) WHERE success`,
				`CREATE INDEX IF NOT EXISTS idx_send_records_deadline ON send_records (deadline_kind, deadline_id)`,
				`CREATE INDEX IF NOT EXISTS idx_send_records_failures ON send_records (sent_at) WHERE NOT success`,
			}
			for _, sql := range indexes {
				if err := tx.Exec(sql).Error; err != nil {
					return err
				}
			}
			return nil
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Migrator().DropTable(&repository.SendRecordModel{})
		},
	}
}
