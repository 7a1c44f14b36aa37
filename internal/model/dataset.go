package model

import (
	"time"

	"dmsreport/internal/table"
)

// Dataset keys. Each maps to one source table read in full.
const (
	Users         = "users"
	Documents     = "documents"
	DocumentTypes = "document_types"
	Departments   = "departments"
	Announcements = "announcements"
	Notifications = "notifications"
	DocVersions   = "doc_versions"
	DocDepts      = "doc_depts"
)

// SourceTables maps dataset keys to the tables they are read from, in load order.
var SourceTables = []struct {
	Key   string
	Table string
}{
	{Users, "dms_user"},
	{Documents, "dms_documents"},
	{DocumentTypes, "document_types"},
	{Departments, "departments"},
	{Announcements, "announcements"},
	{Notifications, "notifications"},
	{DocVersions, "dms_document_versions"},
	{DocDepts, "document_departments"},
}

// SourceTableNames returns the source table names in load order.
func SourceTableNames() []string {
	out := make([]string, 0, len(SourceTables))
	for _, s := range SourceTables {
		out = append(out, s.Table)
	}
	return out
}

// Well-known columns of the source tables and of the joined results.
const (
	ColCreatedAt     = "created_at"
	ColStatus        = "status"
	ColTitle         = "title"
	ColDocID         = "doc_id"
	ColDocType       = "doc_type"
	ColTypeID        = "type_id"
	ColName          = "name"
	ColDepartmentID  = "department_id"
	ColRole          = "role"
	ColCreatedByName = "created_by_name"

	// ColTypeName is the document type display name after the documents join.
	ColTypeName = ColName
)

// Dataset is the result of one load: every source table keyed by dataset key, with
// documents and users already joined to their lookup tables.
//
// A Dataset is never modified after it is built, so it can be shared between requests.
type Dataset struct {
	Tables   map[string]*table.Table
	LoadedAt time.Time
}

// Table returns the named table, or an empty table when it was not loaded.
func (d *Dataset) Table(name string) *table.Table {
	if d == nil {
		return table.New()
	}
	if t, ok := d.Tables[name]; ok && t != nil {
		return t
	}
	return table.New()
}

// Has reports whether the named table was loaded.
func (d *Dataset) Has(name string) bool {
	if d == nil {
		return false
	}
	_, ok := d.Tables[name]
	return ok
}

// TypeNameColumn returns the column holding the document type display name in the joined
// documents table. It is suffixed only when documents carry a name column of their own.
func TypeNameColumn(docs *table.Table) string {
	if docs.Has(ColName + "_type") {
		return ColName + "_type"
	}
	return ColTypeName
}

// UserStatusColumn returns the user status column of the joined users table.
func UserStatusColumn(users *table.Table) string {
	if users.Has(ColStatus + "_user") {
		return ColStatus + "_user"
	}
	return ColStatus
}

// DepartmentNameColumn returns the department display name column of the joined users table.
func DepartmentNameColumn(users *table.Table) string {
	if users.Has(ColName + "_dept") {
		return ColName + "_dept"
	}
	return ColName
}
