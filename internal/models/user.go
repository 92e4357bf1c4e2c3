package models

type Role string

const (
	RoleClient Role = "client"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID        uint   `gorm:"primarykey" json:"id"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
	ChatID    int64  `gorm:"index" json:"chat_id"`
	Username  string `json:"username"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `json:"last_name"`
	Role      Role   `gorm:"type:varchar(20);default:'client'" json:"role"`
	IsActive  bool   `gorm:"not null" json:"is_active"`
}

// IsAdmin проверяет, является ли пользователь администратором
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// SetRole устанавливает роль
func (u *User) SetRole(role Role) {
	u.Role = role
}

// FullName возвращает имя для сообщений
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// TableName задает имя таблицы в БД
func (User) TableName() string {
	return "users"
}

// Actor - тот, кто выполняет операцию
type Actor struct {
	UserID     uint
	Privileged bool
}

// ActorFor строит Actor для пользователя. Администратор не ограничен правилами самообслуживания.
func ActorFor(u *User) Actor {
	return Actor{UserID: u.ID, Privileged: u.IsAdmin()}
}
