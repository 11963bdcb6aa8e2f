package model

// User is an administrative account for the back-office surface. Examinees
// never log in; this table only gates the CRUD and result endpoints.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
	IsSuperuser  bool   `json:"is_superuser"`
}

// LoginRequest is the admin login payload.
type LoginRequest struct {
	Username string `json:"username" binding:"required,min=1,max=50"`
	Password string `json:"password" binding:"required,min=6"`
}
