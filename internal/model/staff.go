package model

// Enseignant 教师档案，与 User 一对一（user_id）
type Enseignant struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	Specialite    string `json:"specialite,omitempty"`
	Grade         string `json:"grade,omitempty"`
	Etablissement string `json:"etablissement,omitempty"`
	User          *User  `json:"user,omitempty"`
}

// Fonctionnaire 公务员档案，与 User 一对一（user_id）
type Fonctionnaire struct {
	ID      int64  `json:"id"`
	UserID  int64  `json:"user_id"`
	Service string `json:"service,omitempty"`
	Poste   string `json:"poste,omitempty"`
	Grade   string `json:"grade,omitempty"`
	Photo   string `json:"photo,omitempty"`
	User    *User  `json:"user,omitempty"`
}

// StaffCreate 管理员创建教师/公务员时提交的数据（后端会隐式创建 User）
type StaffCreate struct {
	Email     string `json:"email"               validate:"required,email"`
	Password  string `json:"password"            validate:"required,min=6"`
	Nom       string `json:"nom"                 validate:"required"`
	Prenom    string `json:"prenom"              validate:"required"`
	Telephone string `json:"telephone,omitempty"`
	Adresse   string `json:"adresse,omitempty"`
	CIN       string `json:"cin,omitempty"`

	// 教师字段
	Specialite    string `json:"specialite,omitempty"`
	Etablissement string `json:"etablissement,omitempty"`

	// 公务员字段
	Service string `json:"service,omitempty"`
	Poste   string `json:"poste,omitempty"`

	Grade string `json:"grade,omitempty"`
}

// StaffUpdate 编辑表单（仅提交非空字段）
type StaffUpdate struct {
	Email         *string `json:"email,omitempty"         validate:"omitempty,email"`
	Nom           *string `json:"nom,omitempty"`
	Prenom        *string `json:"prenom,omitempty"`
	Telephone     *string `json:"telephone,omitempty"`
	Adresse       *string `json:"adresse,omitempty"`
	CIN           *string `json:"cin,omitempty"`
	Specialite    *string `json:"specialite,omitempty"`
	Etablissement *string `json:"etablissement,omitempty"`
	Service       *string `json:"service,omitempty"`
	Poste         *string `json:"poste,omitempty"`
	Grade         *string `json:"grade,omitempty"`
	IsActive      *bool   `json:"is_active,omitempty"`
}
