package store

import "sync"

// Publisher 一个轻量快照分发器：订阅者收不过来时丢弃旧的，只留最新。
type Publisher struct {
	mu   sync.Mutex
	subs []chan Snapshot
}

func NewPublisher() *Publisher {
	return &Publisher{subs: make([]chan Snapshot, 0)}
}

// Subscribe 返回容量为 1 的快照通道。
func (p *Publisher) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()
	return ch
}

// HasSubscribers 是否存在订阅者；无人订阅时调用方可省掉快照组装。
func (p *Publisher) HasSubscribers() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subs) > 0
}

// Publish 非阻塞推送；慢订阅者先腾掉旧快照再放新快照。
func (p *Publisher) Publish(s Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}
