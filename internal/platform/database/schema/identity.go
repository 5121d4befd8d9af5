package schema

// IdentityAccountTable represents the 'identity.account' table
type IdentityAccountTable struct {
	Table       string
	ID          string
	Email       string
	Password    string
	Name        string
	Role        string
	IsConfirmed string
	CreatedAt   string
	UpdatedAt   string
}

// IdentityAccount is the schema definition for identity.account
var IdentityAccount = IdentityAccountTable{
	Table:       "identity.account",
	ID:          "id",
	Email:       "email",
	Password:    "passwordhash",
	Name:        "name",
	Role:        "role",
	IsConfirmed: "isconfirmed",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

// Columns returns all standard column names
func (t IdentityAccountTable) Columns() []string {
	return []string{
		t.ID, t.Email, t.Password, t.Name, t.Role, t.IsConfirmed, t.CreatedAt, t.UpdatedAt,
	}
}

// IdentitySessionTable represents the 'identity.session' table
type IdentitySessionTable struct {
	Table     string
	ID        string
	UserID    string
	TokenHash string
	UserAgent string
	IPAddress string
	IsRevoked string
	ExpiresAt string
	CreatedAt string
}

// IdentitySession is the schema definition for identity.session
var IdentitySession = IdentitySessionTable{
	Table:     "identity.session",
	ID:        "id",
	UserID:    "userid",
	TokenHash: "tokenhash",
	UserAgent: "useragent",
	IPAddress: "ipaddress",
	IsRevoked: "isrevoked",
	ExpiresAt: "expiresat",
	CreatedAt: "createdat",
}

// Columns returns all standard column names
func (t IdentitySessionTable) Columns() []string {
	return []string{
		t.ID, t.UserID, t.TokenHash, t.UserAgent, t.IPAddress, t.IsRevoked, t.ExpiresAt, t.CreatedAt,
	}
}
