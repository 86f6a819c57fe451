// Package service 包含了应用的业务逻辑层。
package service

import "sync"

// GalleryLocks 按画廊 ID 串行化变更操作。
// 同一画廊上的 addArtwork/removeArtwork/deleteGallery 必须互斥，
// 否则两个并发的添加可能都读到 count=5 并同时插入，突破配额；
// 不同画廊上的操作互不影响，可以并行。
type GalleryLocks struct {
	mu    sync.Mutex
	locks map[uint]*sync.Mutex
}

// NewGalleryLocks 创建一个新的锁表。
func NewGalleryLocks() *GalleryLocks {
	return &GalleryLocks{locks: make(map[uint]*sync.Mutex)}
}

// Lock 获取指定画廊的互斥锁，返回对应的解锁函数。
func (g *GalleryLocks) Lock(galleryID uint) func() {
	g.mu.Lock()
	l, ok := g.locks[galleryID]
	if !ok {
		l = &sync.Mutex{}
		g.locks[galleryID] = l
	}
	g.mu.Unlock()

	l.Lock()
	return l.Unlock
}
