package catalog

import "github.com/khidmat-portal/khidmat/internal/access"

var adminTypeOptions = []Option{
	{Label: "Super admins", Value: "is_super_admin"},
	{Label: "Region admins", Value: "is_region_admin"},
	{Label: "Zone admins", Value: "is_zone_admin"},
	{Label: "Mehfil admins", Value: "is_mehfil_admin"},
}

var entities = []Entity{
	{
		Name: "categories", Title: "Categories", Path: "categories", Noun: "category",
		PermissionKey: "CATEGORIES",
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Title", Field: "title_en", Width: 28},
			{Title: "Title (Urdu)", Field: "title_ur", Width: 28},
			{Title: "Active", Field: "is_active", Width: 8},
			{Title: "Created", Field: "created_at", Width: 20},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id", "title_en", "created_at"},
		Filters: []Filter{
			{Key: "is_active", Label: "Status", Field: "is_active", Options: []Option{{"Active", "1"}, {"Inactive", "0"}}},
		},
	},
	{
		Name: "admin-users", Title: "Admin Users", Path: "admin-user", Noun: "admin user",
		PermissionKey: "ADMIN_USERS",
		Overrides: map[access.Action]access.ScopeOverride{
			access.ActionView: access.ZoneAdmin,
			access.ActionEdit: access.ZoneAdmin,
		},
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "name", Width: 22},
			{Title: "Email", Field: "email", Width: 28},
			{Title: "Role", Field: "role.name", Width: 16},
			{Title: "Zone", Field: "zone.title_en", Width: 16},
			{Title: "Mehfil", Field: "mehfil.name", Width: 16},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id", "name", "email"},
		Filters: []Filter{
			{Key: "zone_id", Label: "Zone", Field: "zone_id", Client: true},
			{Key: "admin_type", Label: "Admin type", Client: true, Mode: MatchFlag, Options: adminTypeOptions},
		},
	},
	{
		Name: "roles", Title: "Roles", Path: "roles", Noun: "role",
		PermissionKey: "ROLES",
		Overrides: map[access.Action]access.ScopeOverride{
			access.ActionView: access.ZoneAdmin,
		},
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "name", Width: 24},
			{Title: "Permissions", Field: "permissions", Width: 48},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id", "name"},
	},
	{
		Name: "permissions", Title: "Permissions", Path: "permissions", Noun: "permission",
		PermissionKey: "PERMISSIONS",
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "name", Width: 32},
			{Title: "Guard", Field: "guard_name", Width: 10},
		},
		DefaultSort: "name",
		ServerSort:  []string{"id", "name"},
	},
	{
		Name: "namaz", Title: "Namaz Timings", Path: "namaz", Noun: "namaz timing",
		PermissionKey: "NAMAZ",
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Mehfil", Field: "mehfil.name", Width: 20},
			{Title: "Fajr", Field: "fajr", Width: 8},
			{Title: "Zuhr", Field: "zuhr", Width: 8},
			{Title: "Asr", Field: "asr", Width: 8},
			{Title: "Maghrib", Field: "maghrib", Width: 8},
			{Title: "Isha", Field: "isha", Width: 8},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id"},
		Filters: []Filter{
			{Key: "mehfil_id", Label: "Mehfil", Field: "mehfil_id"},
		},
	},
	{
		Name: "message-schedules", Title: "Message Schedules", Path: "message-schedules", Noun: "message schedule",
		PermissionKey: "MESSAGE_SCHEDULES",
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Message", Field: "message.title_en", Width: 30},
			{Title: "Scheduled", Field: "scheduled_for", Width: 20},
			{Title: "Status", Field: "status", Width: 10},
		},
		DefaultSort: "scheduled_for",
		ServerSort:  []string{"id", "scheduled_for"},
		Filters: []Filter{
			{Key: "status", Label: "Status", Field: "status", Options: []Option{{"Pending", "pending"}, {"Sent", "sent"}, {"Failed", "failed"}}},
		},
	},
	{
		Name: "khat", Title: "Khat", Path: "khat", Noun: "khat",
		PermissionKey: "KHAT",
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "full_name", Width: 22},
			{Title: "City", Field: "city", Width: 14},
			{Title: "Status", Field: "status", Width: 12},
			{Title: "Received", Field: "created_at", Width: 20},
		},
		DefaultSort: "created_at",
		ServerSort:  []string{"id", "created_at"},
		Filters: []Filter{
			{Key: "status", Label: "Status", Field: "status", Options: []Option{{"Pending", "pending"}, {"Replied", "replied"}}},
		},
	},
	{
		Name: "masail", Title: "Masail", Path: "masail", Noun: "masla",
		PermissionKey: "MASAIL",
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "name", Width: 20},
			{Title: "Question", Field: "question", Width: 40},
			{Title: "Status", Field: "status", Width: 12},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id", "created_at"},
	},
	{
		Name: "duty-roster", Title: "Duty Roster", Path: "duty-roster", Noun: "duty roster entry",
		PermissionKey: "DUTY_ROSTER",
		Overrides: map[access.Action]access.ScopeOverride{
			access.ActionView:   access.MehfilAdmin,
			access.ActionCreate: access.MehfilAdmin,
			access.ActionEdit:   access.MehfilAdmin,
			access.ActionDelete: access.MehfilAdmin,
		},
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Day", Field: "day", Width: 10},
			{Title: "Duty", Field: "duty_type.name", Width: 18},
			{Title: "Karkun", Field: "karkun.name", Width: 22},
			{Title: "Mehfil", Field: "mehfil.name", Width: 18},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id"},
		Filters: []Filter{
			{Key: "mehfil_id", Label: "Mehfil", Field: "mehfil_id"},
		},
	},
	{
		Name: "tabarukats", Title: "Tabarukats", Path: "tabarukats", Noun: "tabarukat",
		PermissionKey: "TABARUKATS",
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "name", Width: 24},
			{Title: "Description", Field: "description", Width: 36},
			{Title: "Created", Field: "created_at", Width: 20},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id", "name", "created_at"},
	},
	{
		Name: "new-ehad", Title: "New Ehad", Path: "new-ehad", Noun: "ehad record",
		PermissionKey: "NEW_EHAD",
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "name", Width: 22},
			{Title: "Father", Field: "father_name", Width: 20},
			{Title: "Zone", Field: "zone.title_en", Width: 16},
			{Title: "Date", Field: "ehad_date", Width: 12},
		},
		DefaultSort: "ehad_date",
		ServerSort:  []string{"id", "ehad_date"},
		Filters: []Filter{
			{Key: "zone_id", Label: "Zone", Field: "zone_id"},
		},
	},
	{
		Name: "karkunan", Title: "Karkunan", Path: "karkunan", Noun: "karkun",
		PermissionKey: "KARKUNAN",
		Overrides: map[access.Action]access.ScopeOverride{
			access.ActionView: access.MehfilAdmin,
		},
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "name", Width: 22},
			{Title: "Phone", Field: "phone", Width: 16},
			{Title: "Mehfil", Field: "mehfil.name", Width: 18},
			{Title: "Zone", Field: "zone.title_en", Width: 16},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id", "name"},
		Filters: []Filter{
			{Key: "mehfil_id", Label: "Mehfil", Field: "mehfil_id", Client: true},
		},
	},
	{
		Name: "zones", Title: "Zones", Path: "zones", Noun: "zone",
		PermissionKey: "ZONES",
		Overrides: map[access.Action]access.ScopeOverride{
			access.ActionView: access.RegionAdmin,
		},
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Title", Field: "title_en", Width: 24},
			{Title: "City", Field: "city", Width: 16},
			{Title: "Country", Field: "country", Width: 16},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id", "title_en"},
	},
	{
		Name: "mehfils", Title: "Mehfils", Path: "mehfils", Noun: "mehfil",
		PermissionKey: "MEHFILS",
		Overrides: map[access.Action]access.ScopeOverride{
			access.ActionView: access.ZoneAdmin,
		},
		Columns: []Column{
			{Title: "ID", Field: "id", Width: 6},
			{Title: "Name", Field: "name", Width: 24},
			{Title: "Zone", Field: "zone.title_en", Width: 16},
			{Title: "Address", Field: "address", Width: 32},
		},
		DefaultSort: "id",
		ServerSort:  []string{"id", "name"},
		Filters: []Filter{
			{Key: "zone_id", Label: "Zone", Field: "zone_id"},
		},
	},
}
