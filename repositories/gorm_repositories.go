package repositories

import (
	"gorm.io/gorm"
)

type GormRepositories struct {
	db *gorm.DB
}

func NewGormRepositories(db *gorm.DB) *GormRepositories {
	return &GormRepositories{db: db}
}

func (r *GormRepositories) BuildContainer() Container {
	return Container{
		TxManager: NewGormTxManager(r.db),
		Folders:   NewGormFolderRepository(r.db),
		Tree:      NewGormTreeRepository(r.db),
		Files:     NewGormFileRepository(r.db),
		Identity:  NewGormIdentityRepository(r.db),
		Orders:    NewGormOrderRepository(r.db),
		Tags:      NewGormTagRepository(r.db),
		Bunch:     NewGormBunchRepository(r.db),
		Quota:     NewGormQuotaRepository(r.db),
	}
}

func useTx(db *gorm.DB, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return db
}
