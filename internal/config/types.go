package config

import "github.com/oakwood-commons/trainctl/internal/policy"

// Config is the merged trainctl configuration: API endpoint, locale and
// the table catalogue.
type Config struct {
	API    API              `yaml:"api" json:"api" mapstructure:"api"`
	Locale string           `yaml:"locale" json:"locale" mapstructure:"locale"`
	Tables map[string]Table `yaml:"tables" json:"tables" mapstructure:"tables"`
}

// API configures the HTTP client.
type API struct {
	BaseURL        string `yaml:"base_url" json:"base_url" mapstructure:"base_url"`
	Token          string `yaml:"token,omitempty" json:"token,omitempty" mapstructure:"token"`
	TimeoutSeconds int    `yaml:"timeout_seconds" json:"timeout_seconds" mapstructure:"timeout_seconds"`
	// WebURL is the browser front-end, used for "open in browser" on view/edit.
	WebURL string `yaml:"web_url,omitempty" json:"web_url,omitempty" mapstructure:"web_url"`
}

// Table describes one listing screen.
type Table struct {
	Title string `yaml:"title" json:"title" mapstructure:"title"`
	// Endpoint is the list path; deletes go to Endpoint/<id>.
	Endpoint string `yaml:"endpoint" json:"endpoint" mapstructure:"endpoint"`
	// UpdateEndpoint receives PUTs; defaults to Endpoint.
	UpdateEndpoint string        `yaml:"update_endpoint,omitempty" json:"update_endpoint,omitempty" mapstructure:"update_endpoint"`
	PageSize       int           `yaml:"page_size,omitempty" json:"page_size,omitempty" mapstructure:"page_size"`
	Columns        []Column      `yaml:"columns" json:"columns" mapstructure:"columns"`
	DefaultSort    *Sort         `yaml:"default_sort,omitempty" json:"default_sort,omitempty" mapstructure:"default_sort"`
	Actions        []string      `yaml:"actions,omitempty" json:"actions,omitempty" mapstructure:"actions"`
	ViewURL        string        `yaml:"view_url,omitempty" json:"view_url,omitempty" mapstructure:"view_url"`
	EditURL        string        `yaml:"edit_url,omitempty" json:"edit_url,omitempty" mapstructure:"edit_url"`
	Policy         []policy.Rule `yaml:"policy,omitempty" json:"policy,omitempty" mapstructure:"policy"`
	Status         *Status       `yaml:"status,omitempty" json:"status,omitempty" mapstructure:"status"`
	Cancel         *CancelAction `yaml:"cancel,omitempty" json:"cancel,omitempty" mapstructure:"cancel"`
}

// Column maps to column.Descriptor. Format names a renderer (text, date, money, pill).
type Column struct {
	Key      string `yaml:"key" json:"key" mapstructure:"key"`
	Header   string `yaml:"header,omitempty" json:"header,omitempty" mapstructure:"header"`
	Sortable bool   `yaml:"sortable,omitempty" json:"sortable,omitempty" mapstructure:"sortable"`
	Hidden   bool   `yaml:"hidden,omitempty" json:"hidden,omitempty" mapstructure:"hidden"`
	Width    int    `yaml:"width,omitempty" json:"width,omitempty" mapstructure:"width"`
	Format   string `yaml:"format,omitempty" json:"format,omitempty" mapstructure:"format"`
}

// Sort is the initial sort of a table.
type Sort struct {
	Column string `yaml:"column" json:"column" mapstructure:"column"`
	Order  string `yaml:"order,omitempty" json:"order,omitempty" mapstructure:"order"`
}

// Status configures the interactive status/role/permission cell.
type Status struct {
	Variant          string   `yaml:"variant,omitempty" json:"variant,omitempty" mapstructure:"variant"`
	Field            string   `yaml:"field" json:"field" mapstructure:"field"`
	Options          []string `yaml:"options,omitempty" json:"options,omitempty" mapstructure:"options"`
	Sentinel         string   `yaml:"sentinel,omitempty" json:"sentinel,omitempty" mapstructure:"sentinel"`
	PermissionsField string   `yaml:"permissions_field,omitempty" json:"permissions_field,omitempty" mapstructure:"permissions_field"`
	Permissions      []string `yaml:"permissions,omitempty" json:"permissions,omitempty" mapstructure:"permissions"`
}

// CancelAction turns the cancel action into a PUT setting Field to Value.
type CancelAction struct {
	Field   string `yaml:"field" json:"field" mapstructure:"field"`
	Value   string `yaml:"value" json:"value" mapstructure:"value"`
	Message string `yaml:"message,omitempty" json:"message,omitempty" mapstructure:"message"`
}
