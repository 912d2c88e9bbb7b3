package service

import (
	"liveroom/internal/repository"
	"liveroom/internal/utils"
	"liveroom/pkg/config"
)

type Services struct {
	User       *UserService
	Room       *RoomService
	Membership *MembershipService
	Session    *SessionService
	Result     *ResultService
}

func NewServices(store *repository.Store, tokens *utils.TokenManager, roomCfg config.RoomConfig) *Services {
	return &Services{
		User:       NewUserService(store.User, tokens),
		Room:       NewRoomService(store, roomCfg.Capacity),
		Membership: NewMembershipService(store),
		Session:    NewSessionService(store),
		Result:     NewResultService(store),
	}
}
