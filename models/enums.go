package models

import "errors"

// Company identifies the billing entity. The platform serves exactly two.
type Company string

const (
	CompanyBoost Company = "Boost"
	CompanySalt2 Company = "SALT2"
)

func (c Company) IsValid() bool {
	return c == CompanyBoost || c == CompanySalt2
}

func ParseCompany(s string) (Company, error) {
	c := Company(s)
	if !c.IsValid() {
		return "", errors.New("invalid company")
	}
	return c, nil
}

type SalaryType string

const (
	SalaryTypeHourly  SalaryType = "hourly"
	SalaryTypeMonthly SalaryType = "monthly"
)

func (t SalaryType) IsValid() bool {
	return t == SalaryTypeHourly || t == SalaryTypeMonthly
}

type ProjectType string

const (
	// ProjectTypePassThrough bills one entity for the other's staff cost
	// plus a markup; revenue is cost-derived.
	ProjectTypePassThrough ProjectType = "pass_through"
	// ProjectTypeDirect bills a fixed contracted monthly amount.
	ProjectTypeDirect ProjectType = "direct"
)

func (t ProjectType) IsValid() bool {
	return t == ProjectTypePassThrough || t == ProjectTypeDirect
}

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusConfirmed InvoiceStatus = "confirmed"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusVoid      InvoiceStatus = "void"
)

func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusConfirmed, InvoiceStatusPaid, InvoiceStatusVoid:
		return true
	}
	return false
}

// CashInStatuses are the invoice statuses counted as client cash-in.
var CashInStatuses = []InvoiceStatus{InvoiceStatusSent, InvoiceStatusConfirmed}

type AttendanceStatus string

const (
	AttendanceStatusWorking AttendanceStatus = "working"
	AttendanceStatusDone    AttendanceStatus = "done"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

func (s AttendanceStatus) IsValid() bool {
	switch s {
	case AttendanceStatusWorking, AttendanceStatusDone, AttendanceStatusAbsent:
		return true
	}
	return false
}

type ContractStatus string

const (
	ContractStatusDraft  ContractStatus = "draft"
	ContractStatusSent   ContractStatus = "sent"
	ContractStatusSigned ContractStatus = "signed"
	ContractStatusVoided ContractStatus = "voided"
)

func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusSent, ContractStatusSigned, ContractStatusVoided:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

func (r UserRole) IsValid() bool {
	return r == UserRoleAdmin || r == UserRoleMember
}

// PLRecordType distinguishes generated record flavors sharing the pl_records
// table. Only "pl" is produced today.
const PLRecordTypePL = "pl"
