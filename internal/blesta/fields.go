package blesta

import "fmt"

// Field is one key/value meta record (module row meta, package meta,
// service fields, company settings). Value is plaintext; when Encrypted is
// set the store encrypts it at write time.
type Field struct {
	Key        string
	Value      string
	Serialized bool
	Encrypted  bool
}

// FieldTable selects the meta table a set of fields is written to.
type FieldTable int

const (
	ModuleRowMeta FieldTable = iota
	PackageMeta
	ServiceFields
	CompanySettings
)

// FieldScope names the owner of a set of fields.
type FieldScope struct {
	Table   FieldTable
	OwnerID int64
}

func (t FieldTable) String() string {
	switch t {
	case ModuleRowMeta:
		return "module_row_meta"
	case PackageMeta:
		return "package_meta"
	case ServiceFields:
		return "service_fields"
	case CompanySettings:
		return "company_settings"
	}
	return fmt.Sprintf("FieldTable(%d)", int(t))
}

type fieldRow struct {
	OwnerID    int64  `db:"owner_id"`
	Key        string `db:"key"`
	Value      string `db:"value"`
	Serialized bool   `db:"serialized"`
	Encrypted  bool   `db:"encrypted"`
}

func fieldInsert(t FieldTable) (string, error) {
	switch t {
	case ModuleRowMeta:
		return "INSERT INTO module_row_meta (module_row_id, `key`, value, serialized, encrypted) VALUES (:owner_id, :key, :value, :serialized, :encrypted)", nil
	case PackageMeta:
		return "INSERT INTO package_meta (package_id, `key`, value, serialized, encrypted) VALUES (:owner_id, :key, :value, :serialized, :encrypted)", nil
	case ServiceFields:
		return "INSERT INTO service_fields (service_id, `key`, value, serialized, encrypted) VALUES (:owner_id, :key, :value, :serialized, :encrypted)", nil
	case CompanySettings:
		return "INSERT INTO company_settings (company_id, `key`, value, encrypted) VALUES (:owner_id, :key, :value, :encrypted) ON DUPLICATE KEY UPDATE value = VALUES(value), encrypted = VALUES(encrypted)", nil
	}
	return "", fmt.Errorf("unknown field table %v", t)
}
