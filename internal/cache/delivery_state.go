package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"
)

const (
	defaultBadgeTTL = 24 * time.Hour
	defaultAckTTL   = 7 * 24 * time.Hour
)

// DeliveryBadge 交付关注徽标：等待该用户处理的交付记录数
type DeliveryBadge struct {
	UserID    uint   `json:"user_id"`
	Role      string `json:"role"`
	Awaiting  int64  `json:"awaiting"`
	UpdatedAt int64  `json:"updated_at"`
}

func badgeKey(role string, userID uint) string {
	return fmt.Sprintf("delivery:badge:%s:%d", role, userID)
}

func ackSetKey(userID uint) string {
	return fmt.Sprintf("delivery:ack:%d", userID)
}

// SetDeliveryBadge 写入交付徽标
func SetDeliveryBadge(ctx context.Context, badge *DeliveryBadge, ttl time.Duration) error {
	if badge == nil || badge.UserID == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultBadgeTTL
	}
	badge.UpdatedAt = time.Now().Unix()
	return SetJSON(ctx, badgeKey(badge.Role, badge.UserID), badge, ttl)
}

// GetDeliveryBadge 读取交付徽标
func GetDeliveryBadge(ctx context.Context, role string, userID uint) (*DeliveryBadge, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var badge DeliveryBadge
	hit, err := GetJSON(ctx, badgeKey(role, userID), &badge)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &badge, true, nil
}

// AddAcknowledgedDeliveries 将交付记录 ID 加入用户的已读集合。
// 集合仅作前端提示用，丢失无碍，每次写入刷新 TTL。
func AddAcknowledgedDeliveries(ctx context.Context, userID uint, deliveryIDs []uint, ttl time.Duration) error {
	if !Enabled() || userID == 0 || len(deliveryIDs) == 0 {
		return nil
	}
	if ttl <= 0 {
		ttl = defaultAckTTL
	}
	members := make([]interface{}, 0, len(deliveryIDs))
	for _, id := range deliveryIDs {
		if id == 0 {
			continue
		}
		members = append(members, strconv.FormatUint(uint64(id), 10))
	}
	if len(members) == 0 {
		return nil
	}
	key := buildKey(ackSetKey(userID))
	if err := redisClient.SAdd(ctx, key, members...).Err(); err != nil {
		return err
	}
	return redisClient.Expire(ctx, key, ttl).Err()
}

// ListAcknowledgedDeliveries 读取用户已读的交付记录 ID 集合
func ListAcknowledgedDeliveries(ctx context.Context, userID uint) (map[uint]bool, error) {
	acknowledged := make(map[uint]bool)
	if !Enabled() || userID == 0 {
		return acknowledged, nil
	}
	members, err := redisClient.SMembers(ctx, buildKey(ackSetKey(userID))).Result()
	if err != nil {
		return nil, err
	}
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		acknowledged[uint(id)] = true
	}
	return acknowledged, nil
}
