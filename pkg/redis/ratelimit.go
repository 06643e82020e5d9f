package redis

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// allowScript 计数与设置过期在同一脚本内完成；没有过期时间的计数键也会补上
var allowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Allow 固定窗口计数限流，窗口内第 limit+1 次起返回 false
func (r *RedisClient) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	count, err := allowScript.Run(ctx, r.client, []string{key}, window.Milliseconds()).Int64()
	if err != nil {
		return false, err
	}
	return count <= int64(limit), nil
}
