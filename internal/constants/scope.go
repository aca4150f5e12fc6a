package constants

type TemplateScope string

const (
	ScopeGlobal TemplateScope = "global"
	ScopeDomain TemplateScope = "domain"
)

type DomainRole string

const (
	RoleMember DomainRole = "member"
	RoleAdmin  DomainRole = "admin"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}
