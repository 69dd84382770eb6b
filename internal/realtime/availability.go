package realtime

import "github.com/gofiber/websocket/v2"

// AvailabilityHub fans doctor availability changes out to connected
// reception/display clients.
type AvailabilityHub struct {
	Register   chan *websocket.Conn
	Unregister chan *websocket.Conn
	Broadcast  chan []byte
	Clients    map[*websocket.Conn]bool
}

var Availability = AvailabilityHub{
	Register:   make(chan *websocket.Conn),
	Unregister: make(chan *websocket.Conn),
	Broadcast:  make(chan []byte),
	Clients:    make(map[*websocket.Conn]bool),
}

func RunAvailabilityBroadcaster() {
	for {
		select {
		case c := <-Availability.Register:
			Availability.Clients[c] = true
		case c := <-Availability.Unregister:
			delete(Availability.Clients, c)
			c.Close()
		case msg := <-Availability.Broadcast:
			for c := range Availability.Clients {
				c.WriteMessage(websocket.TextMessage, msg)
			}
		}
	}
}
