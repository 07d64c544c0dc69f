package policy

// Kind 区分三种请求主体：匿名访客、普通登录用户、管理员
type Kind int

const (
	KindAnonymous Kind = iota
	KindUser
	KindAdmin
)

// Principal 是一次请求解析出来的主体，决策函数都是纯函数，
// 文章和评论的所有权检查共用这一套，不要在各自的 handler 里重复写
type Principal struct {
	kind Kind
	id   uint
}

func Anonymous() Principal {
	return Principal{kind: KindAnonymous}
}

func User(id uint) Principal {
	return Principal{kind: KindUser, id: id}
}

func Admin(id uint) Principal {
	return Principal{kind: KindAdmin, id: id}
}

func (p Principal) Kind() Kind {
	return p.kind
}

func (p Principal) IsAdmin() bool {
	return p.kind == KindAdmin
}

func (p Principal) IsAuthenticated() bool {
	return p.kind == KindUser || p.kind == KindAdmin
}

// UserID 返回主体的用户 ID ，匿名主体没有 ID
func (p Principal) UserID() (uint, bool) {
	if !p.IsAuthenticated() {
		return 0, false
	}
	return p.id, true
}

// CanModify 判断主体能否修改（更新、删除）一个资源。
// ownerID 为 nil 表示资源没有归属用户（例如匿名评论），这时只有管理员可以操作：
// 匿名提交者没有任何凭证能证明自己是原作者
func (p Principal) CanModify(ownerID *uint) bool {
	switch p.kind {
	case KindAdmin:
		return true
	case KindUser:
		return ownerID != nil && *ownerID == p.id
	default:
		return false
	}
}

// CanReadPost 是独立于所有权规则的可见性判断：
// 已发布的文章所有人可读，未发布的只有作者本人和管理员可读
func (p Principal) CanReadPost(published bool, authorID uint) bool {
	if published {
		return true
	}
	switch p.kind {
	case KindAdmin:
		return true
	case KindUser:
		return p.id == authorID
	default:
		return false
	}
}
