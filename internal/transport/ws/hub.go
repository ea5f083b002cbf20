package ws

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// Единственная общая группа чата. Фан-аут идет через Redis pub/sub,
// поэтому несколько процессов видят одни и те же сообщения.
const chatChannel = "global_chat"

// Hub держит реестр живых соединений. Членство меняется только
// внутри Run, так что мьютексы не нужны.
type Hub struct {
	rdb *redis.Client

	register   chan *Client
	unregister chan *Client
	clients    map[*Client]bool

	// Закрывается при выходе из Run, чтобы Register/Unregister
	// не повисли на остановленном хабе
	done chan struct{}
}

func NewHub(rdb *redis.Client) *Hub {
	return &Hub{
		rdb:        rdb,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
		done:       make(chan struct{}),
	}
}

// Run блокирует до отмены контекста
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	sub := h.rdb.Subscribe(ctx, chatChannel)
	defer sub.Close()
	messages := sub.Channel()

	for {
		select {
		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}

		case msg, ok := <-messages:
			if !ok {
				return
			}
			for client := range h.clients {
				select {
				case client.send <- []byte(msg.Payload):
				default:
					// Клиент не успевает читать: отключаем, буфер не копим
					delete(h.clients, client)
					close(client.send)
				}
			}

		case <-ctx.Done():
			return
		}
	}
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast публикует кадр в Redis; обратно его получат все участники группы,
// включая отправителя
func (h *Hub) Broadcast(ctx context.Context, payload []byte) error {
	return h.rdb.Publish(ctx, chatChannel, payload).Err()
}
