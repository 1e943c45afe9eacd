package models

import (
	"log"

	"github.com/boost-jp/ops_backend/config"
)

func MigrateTable() {
	db := config.GetDB()

	err := db.AutoMigrate(
		&Member{}, &CompensationTerm{}, &ToolSubscription{},
		&Project{}, &ProjectMember{},
		&WorkAllocation{},
		&Invoice{}, &InvoiceLineItem{},
		&PLRecord{}, &CashflowRecord{},
		&Attendance{}, &Contract{},
		&Skill{}, &MemberSkill{},
		&User{},
	)
	if err != nil {
		log.Fatal(err)
	}
}
