// feed-tail connects to the chat server's TCP event feed and prints each
// message as it arrives.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"os"

	"chathub/pkg/models"
)

func main() {
	addr := "127.0.0.1:9090"
	if len(os.Args) > 1 {
		addr = os.Args[1]
	}

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dial:", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Println("Connected to event feed:", addr)

	sc := bufio.NewScanner(conn)
	for sc.Scan() {
		var m models.Message
		if err := json.Unmarshal(sc.Bytes(), &m); err != nil {
			fmt.Println(sc.Text())
			continue
		}
		fmt.Printf("[%s] %s: %s\n", m.Timestamp.Local().Format("15:04:05"), m.Sender, m.Text)
	}
	fmt.Println("Disconnected.")
}
