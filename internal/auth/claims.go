package auth

// UserClaims is the caller identity a handler sees, whichever way the
// request authenticated.
type UserClaims interface {
	UserID() string
	Source() string
}

type JWTClaims struct {
	UserUUID string
	TokenID  string
}

func (c *JWTClaims) UserID() string { return c.UserUUID }
func (c *JWTClaims) Source() string { return "JWT" }

// CLIClaims identifies an operator running the import CLI.
type CLIClaims struct {
	UserName string
}

func (c *CLIClaims) UserID() string { return c.UserName }
func (c *CLIClaims) Source() string { return "CLI" }
