package authz

import "github.com/magabrotheeeer/training-platform/internal/models"

// Actor — снимок текущей учётной записи, полученный из JWT.
// Вычислитель доверяет этой тройке и не перепроверяет роль по другим данным.
type Actor struct {
	UUID        string // Идентификатор учётной записи
	Role        string // Роль учётной записи
	CompanyUUID string // Компания актора, пустая строка для ролей вне компаний
}

// Resource — снимок ресурса, достаточный для принятия решения.
// Вызывающая сторона загружает ресурс сама и обязана перепроверить
// его состояние в той же транзакции, что выполняет изменение.
type Resource struct {
	Kind        string // Тип ресурса, для диагностики
	CompanyUUID string // Компания ресурса, пустая строка для ресурсов вне компаний
	OwnerUUID   string // Владелец ресурса
	Missing     bool   // Ресурс отсутствует либо истёк
	Stale       bool   // Ресурс в терминальном состоянии, несовместимом с действием
	Entitled    bool   // Активна ли подписка компании ресурса
}

// Reason — типизированная причина отказа.
type Reason string

// Причины отказа в порядке их старшинства.
const (
	ReasonNone            Reason = ""
	ReasonUnauthenticated Reason = "unauthenticated"
	ReasonNotEntitled     Reason = "not entitled"
	ReasonNotFound        Reason = "not found"
	ReasonStaleState      Reason = "stale state"
	ReasonRoleMismatch    Reason = "role mismatch"
	ReasonCrossTenant     Reason = "cross-tenant"
	ReasonNotOwner        Reason = "not owner"
	ReasonUnknownAction   Reason = "unknown action"
)

// Decision — результат вычисления политики: разрешение либо отказ с причиной.
type Decision struct {
	Allowed bool
	Reason  Reason
}

func allow() Decision        { return Decision{Allowed: true} }
func deny(r Reason) Decision { return Decision{Allowed: false, Reason: r} }

// Decide принимает решение о допустимости действия actor над resource.
// Функция чистая: не выполняет ввод-вывод и не изменяет аргументы.
//
// Порядок проверок:
//  1. Отсутствие актора — отказ unauthenticated (кроме действий, открытых
//     неаутентифицированным, например принятие приглашения).
//  2. Для действий, требующих оплаты, — проверка подписки компании ресурса.
//  3. Суперадмин получает разрешение на всё, кроме действий, закреплённых
//     за владельцем ресурса.
//  4. Отсутствующий или истёкший ресурс — отказ not found.
//  5. Для тенантных действий ресурс чужой компании даёт cross-tenant
//     раньше проверок состояния, роли и владения: ответ о чужом ресурсе
//     не должен отличаться от ответа о несуществующем.
//  6. Терминальное состояние — отказ stale state, несовпадение роли —
//     role mismatch, владельца — not owner.
func Decide(actor Actor, action Action, res Resource) Decision {
	rl, ok := rules[action]
	if !ok {
		return deny(ReasonUnknownAction)
	}

	open := len(rl.Clauses) == 1 && rl.Clauses[0] == (clause{})
	if actor.UUID == "" && !open {
		return deny(ReasonUnauthenticated)
	}

	if rl.Billing && !res.Entitled {
		return deny(ReasonNotEntitled)
	}

	superadmin := actor.Role == models.RoleSuperAdmin && !rl.OwnerReserved

	if res.Missing {
		return deny(ReasonNotFound)
	}
	if scopedAction(rl) && foreignTenant(actor, res) {
		return deny(ReasonCrossTenant)
	}
	if res.Stale {
		return deny(ReasonStaleState)
	}

	if superadmin {
		return allow()
	}

	cl, ok := matchClause(rl, actor)
	if !ok {
		return deny(ReasonRoleMismatch)
	}

	if cl.TenantScoped && actor.CompanyUUID != res.CompanyUUID {
		return deny(ReasonCrossTenant)
	}
	if cl.OwnerOnly && actor.UUID != res.OwnerUUID {
		return deny(ReasonNotOwner)
	}
	return allow()
}

// matchClause подбирает первый вариант правила, подходящий по роли актора.
func matchClause(rl rule, actor Actor) (clause, bool) {
	for _, cl := range rl.Clauses {
		if cl.Role == "" || cl.Role == actor.Role {
			return cl, true
		}
	}
	return clause{}, false
}

// scopedAction сообщает, привязано ли действие к компании или владельцу
// ресурса хотя бы одним вариантом правила.
func scopedAction(rl rule) bool {
	for _, cl := range rl.Clauses {
		if cl.TenantScoped || cl.OwnerOnly {
			return true
		}
	}
	return false
}

// foreignTenant истинен, когда актор и ресурс принадлежат разным компаниям.
// Акторы и ресурсы вне компаний под правило сокрытия не попадают.
func foreignTenant(actor Actor, res Resource) bool {
	return actor.CompanyUUID != "" && res.CompanyUUID != "" && actor.CompanyUUID != res.CompanyUUID
}
