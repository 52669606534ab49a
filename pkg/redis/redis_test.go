package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return Wrap(rdb, zap.NewNop()), mr
}

func TestSessionKeys(t *testing.T) {
	c, mr := newTestClient(t)
	ctx := context.Background()

	if _, found, err := c.SessionGet(ctx, "sid-1", "access_token"); err != nil || found {
		t.Fatalf("空存储应返回 found=false，实际 found=%v err=%v", found, err)
	}

	if err := c.SessionSet(ctx, "sid-1", "access_token", "tok", time.Hour); err != nil {
		t.Fatalf("SessionSet 失败: %v", err)
	}
	if !mr.Exists("gestion:session:sid-1:access_token") {
		t.Error("期望键 gestion:session:sid-1:access_token 存在")
	}
	if ttl := mr.TTL("gestion:session:sid-1:access_token"); ttl != time.Hour {
		t.Errorf("期望 TTL=1h，实际=%v", ttl)
	}

	v, found, err := c.SessionGet(ctx, "sid-1", "access_token")
	if err != nil || !found || v != "tok" {
		t.Fatalf("期望读取到 tok，实际 v=%q found=%v err=%v", v, found, err)
	}

	if err := c.SessionDelete(ctx, "sid-1", "access_token", "user"); err != nil {
		t.Fatalf("SessionDelete 失败: %v", err)
	}
	if _, found, _ := c.SessionGet(ctx, "sid-1", "access_token"); found {
		t.Error("删除后不应再读取到")
	}
}

func TestCheckRateLimit(t *testing.T) {
	c, _ := newTestClient(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
		if err != nil {
			t.Fatalf("CheckRateLimit 失败: %v", err)
		}
		if !ok {
			t.Fatalf("第 %d 次请求应允许通过", i+1)
		}
	}
	ok, err := c.CheckRateLimit(ctx, "rl:test", 3, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("超过限额后应拒绝")
	}
}
