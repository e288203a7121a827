package psa

// PatchOp is a single JSON-Patch-style operation. The API applies exactly
// one operation per PATCH request; changing several fields takes several
// calls.
type PatchOp struct {
	Op    string      `json:"op"    yaml:"op"`
	Path  string      `json:"path"  yaml:"path"`
	Value interface{} `json:"value" yaml:"value"`
}

// Patch operation verbs.
const (
	PatchReplace = "replace"
	PatchAdd     = "add"
	PatchRemove  = "remove"
)

// Replace builds a replace operation for the given path.
func Replace(path string, value interface{}) PatchOp {
	return PatchOp{Op: PatchReplace, Path: path, Value: value}
}

// Reference points at a related record by id and identifier. The API embeds
// these in place of full child records.
type Reference struct {
	ID         int    `json:"id,omitempty"         yaml:"id,omitempty"`
	Identifier string `json:"identifier,omitempty" yaml:"identifier,omitempty"`
	Name       string `json:"name,omitempty"       yaml:"name,omitempty"`
}

// CustomFields carries user-defined fields without modeling their schema.
type CustomFields []map[string]interface{}

// SystemInfo is the system information record returned by the probe
// endpoint after authentication.
type SystemInfo struct {
	Version        string `json:"version"        yaml:"version"`
	IsCloud        bool   `json:"isCloud"        yaml:"isCloud"`
	ServerTimeZone string `json:"serverTimeZone" yaml:"serverTimeZone"`
	CloudRegion    string `json:"cloudRegion"    yaml:"cloudRegion"`
}

// Company is a thin company record. The full domain schema is deliberately
// not modeled; unrecognized fields live in CustomFields or are dropped.
type Company struct {
	ID           int          `json:"id,omitempty"           yaml:"id,omitempty"`
	Identifier   string       `json:"identifier,omitempty"   yaml:"identifier,omitempty"`
	Name         string       `json:"name,omitempty"         yaml:"name,omitempty"`
	Status       *Reference   `json:"status,omitempty"       yaml:"status,omitempty"`
	Type         *Reference   `json:"type,omitempty"         yaml:"type,omitempty"`
	Site         *Reference   `json:"site,omitempty"         yaml:"site,omitempty"`
	PhoneNumber  string       `json:"phoneNumber,omitempty"  yaml:"phoneNumber,omitempty"`
	Website      string       `json:"website,omitempty"      yaml:"website,omitempty"`
	CustomFields CustomFields `json:"customFields,omitempty" yaml:"customFields,omitempty"`
}

// Ticket is a thin service ticket record.
type Ticket struct {
	ID           int          `json:"id,omitempty"           yaml:"id,omitempty"`
	Summary      string       `json:"summary,omitempty"      yaml:"summary,omitempty"`
	Board        *Reference   `json:"board,omitempty"        yaml:"board,omitempty"`
	Status       *Reference   `json:"status,omitempty"       yaml:"status,omitempty"`
	Company      *Reference   `json:"company,omitempty"      yaml:"company,omitempty"`
	Priority     *Reference   `json:"priority,omitempty"     yaml:"priority,omitempty"`
	Owner        *Reference   `json:"owner,omitempty"        yaml:"owner,omitempty"`
	CustomFields CustomFields `json:"customFields,omitempty" yaml:"customFields,omitempty"`
}

// TicketNote is a note attached to a ticket. TicketID is a path parameter;
// the create dispatcher strips it from the request body.
type TicketNote struct {
	ID                    int    `json:"id,omitempty"                    yaml:"id,omitempty"`
	TicketID              int    `json:"ticketId,omitempty"              yaml:"ticketId,omitempty"`
	Text                  string `json:"text,omitempty"                  yaml:"text,omitempty"`
	DetailDescriptionFlag bool   `json:"detailDescriptionFlag,omitempty" yaml:"detailDescriptionFlag,omitempty"`
	InternalAnalysisFlag  bool   `json:"internalAnalysisFlag,omitempty"  yaml:"internalAnalysisFlag,omitempty"`
}

// Agreement is a thin agreement record.
type Agreement struct {
	ID           int          `json:"id,omitempty"           yaml:"id,omitempty"`
	Name         string       `json:"name,omitempty"         yaml:"name,omitempty"`
	Type         *Reference   `json:"type,omitempty"         yaml:"type,omitempty"`
	Company      *Reference   `json:"company,omitempty"      yaml:"company,omitempty"`
	StartDate    string       `json:"startDate,omitempty"    yaml:"startDate,omitempty"`
	EndDate      string       `json:"endDate,omitempty"      yaml:"endDate,omitempty"`
	CustomFields CustomFields `json:"customFields,omitempty" yaml:"customFields,omitempty"`
}

// Configuration is a thin configuration item record.
type Configuration struct {
	ID           int          `json:"id,omitempty"           yaml:"id,omitempty"`
	Name         string       `json:"name,omitempty"         yaml:"name,omitempty"`
	Type         *Reference   `json:"type,omitempty"         yaml:"type,omitempty"`
	Status       *Reference   `json:"status,omitempty"       yaml:"status,omitempty"`
	Company      *Reference   `json:"company,omitempty"      yaml:"company,omitempty"`
	SerialNumber string       `json:"serialNumber,omitempty" yaml:"serialNumber,omitempty"`
	CustomFields CustomFields `json:"customFields,omitempty" yaml:"customFields,omitempty"`
}

// TimeEntry is a thin time entry record.
type TimeEntry struct {
	ID         int        `json:"id,omitempty"         yaml:"id,omitempty"`
	Company    *Reference `json:"company,omitempty"    yaml:"company,omitempty"`
	Member     *Reference `json:"member,omitempty"     yaml:"member,omitempty"`
	ChargeCode *Reference `json:"chargeCode,omitempty" yaml:"chargeCode,omitempty"`
	TimeStart  string     `json:"timeStart,omitempty"  yaml:"timeStart,omitempty"`
	TimeEnd    string     `json:"timeEnd,omitempty"    yaml:"timeEnd,omitempty"`
	Notes      string     `json:"notes,omitempty"      yaml:"notes,omitempty"`
	Hours      float64    `json:"hours,omitempty"      yaml:"hours,omitempty"`
}

// Member is a thin member account record.
type Member struct {
	ID           int    `json:"id,omitempty"           yaml:"id,omitempty"`
	Identifier   string `json:"identifier,omitempty"   yaml:"identifier,omitempty"`
	FirstName    string `json:"firstName,omitempty"    yaml:"firstName,omitempty"`
	LastName     string `json:"lastName,omitempty"     yaml:"lastName,omitempty"`
	EmailAddress string `json:"emailAddress,omitempty" yaml:"emailAddress,omitempty"`
	InactiveFlag bool   `json:"inactiveFlag,omitempty" yaml:"inactiveFlag,omitempty"`
}
