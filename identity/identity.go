// Package identity 定义不透明的用户身份提供方边界。
//
// 会话管理、登录流程都在外部系统；SDK 只读取一个不透明的用户
// 标识并订阅其变化，从不触碰其内部结构。
package identity

// User 不透明的用户标识
type User struct {
	// ID 外部身份系统分配的标识
	ID string

	// DisplayName 展示名（可为空）
	DisplayName string
}

// Unsubscribe 取消订阅句柄
type Unsubscribe func()

// Provider 用户身份提供方
type Provider interface {
	// CurrentUser 返回当前登录用户；未登录时 ok=false
	CurrentUser() (user User, ok bool)

	// OnUserChanged 订阅用户变化；返回取消订阅句柄
	OnUserChanged(cb func(user User, ok bool)) Unsubscribe
}

// StaticProvider 固定用户的 Provider 实现（CLI 和测试用）
type StaticProvider struct {
	user  User
	valid bool
}

// NewStaticProvider 创建固定用户的身份提供方
func NewStaticProvider(user User) *StaticProvider {
	return &StaticProvider{user: user, valid: user.ID != ""}
}

// CurrentUser 返回固定用户
func (p *StaticProvider) CurrentUser() (User, bool) {
	return p.user, p.valid
}

// OnUserChanged 固定用户不会变化
func (p *StaticProvider) OnUserChanged(cb func(User, bool)) Unsubscribe {
	return func() {}
}
