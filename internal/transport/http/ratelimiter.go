package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Rule — именованный лимит для конечной точки. Все правила собраны
// здесь, а не разбросаны по роутеру.
type Rule struct {
	Name   string
	Limit  int64
	Window time.Duration
}

var (
	ruleRegister = Rule{Name: "register", Limit: 5, Window: 5 * time.Minute}
	ruleLogin    = Rule{Name: "login", Limit: 5, Window: time.Minute}
	// Подсказки ходят в платный апстрим — лимит жестче обычного
	ruleSuggest = Rule{Name: "suggest", Limit: 10, Window: time.Minute}
)

func (r Rule) key(ip string) string {
	return "coursehub:ratelimit:" + r.Name + ":" + ip
}

type RateLimiter struct {
	redisClient *redis.Client
}

func NewRateLimiter(client *redis.Client) *RateLimiter {
	return &RateLimiter{redisClient: client}
}

func (rl *RateLimiter) Limit(rule Rule) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rule.key(c.ClientIP())

		count, err := rl.redisClient.Incr(c, key).Result()
		if err != nil {
			// Redis лег — пропускаем, лимитер не должен ронять вход
			c.Next()
			return
		}

		// Первый запрос в окне заводит TTL на ключ
		if count == 1 {
			rl.redisClient.Expire(c, key, rule.Window)
		}

		if count > rule.Limit {
			ttl, _ := rl.redisClient.TTL(c, key).Result()

			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Too many requests",
				"retry_after": retryAfter(ttl),
			})
			return
		}
		c.Next()
	}
}

// retryAfter переводит остаток окна в человекочитаемую строку:
// секунды для коротких окон, минуты для длинных.
func retryAfter(ttl time.Duration) string {
	if ttl < time.Minute {
		return fmt.Sprintf("%.0f seconds", ttl.Seconds())
	}
	return fmt.Sprintf("%.0f minutes", ttl.Minutes())
}
