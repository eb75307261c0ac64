package service

import "github.com/fitmarket-next/internal/constants"

// ActorRole 交付操作者角色，取值范围固定
type ActorRole string

// 角色取值
const (
	ActorTrainer      ActorRole = constants.ActorRoleTrainer
	ActorClient       ActorRole = constants.ActorRoleClient
	ActorOrderCreator ActorRole = constants.ActorRoleOrderCreator
)

// Actor 发起交付操作的主体
type Actor struct {
	Role ActorRole
	ID   uint
}

// Valid 角色是否属于已知集合
func (a Actor) Valid() bool {
	switch a.Role {
	case ActorTrainer, ActorClient:
		return a.ID > 0
	case ActorOrderCreator:
		return true
	default:
		return false
	}
}

// TrainerActor 构造教练操作者
func TrainerActor(id uint) Actor {
	return Actor{Role: ActorTrainer, ID: id}
}

// ClientActor 构造客户操作者
func ClientActor(id uint) Actor {
	return Actor{Role: ActorClient, ID: id}
}

// OrderCreatorActor 构造下单方操作者
func OrderCreatorActor() Actor {
	return Actor{Role: ActorOrderCreator}
}
