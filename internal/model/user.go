package model

// User 用户身份记录（后端所有，客户端仅持有只读缓存）
type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	Nom       string `json:"nom"`
	Prenom    string `json:"prenom"`
	Telephone string `json:"telephone,omitempty"`
	Adresse   string `json:"adresse,omitempty"`
	CIN       string `json:"cin,omitempty"`
	Role      Role   `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at,omitempty"`
}

// FullName 展示用姓名
func (u *User) FullName() string {
	switch {
	case u.Prenom == "":
		return u.Nom
	case u.Nom == "":
		return u.Prenom
	default:
		return u.Prenom + " " + u.Nom
	}
}

// Credentials 登录凭证（以表单编码提交给后端）
type Credentials struct {
	Username string `json:"username" form:"username" binding:"required"`
	Password string `json:"password" form:"password" binding:"required"`
}

// TokenPair 后端登录响应
type TokenPair struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
