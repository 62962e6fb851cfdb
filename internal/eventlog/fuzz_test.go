package eventlog

import (
	"testing"
)

func FuzzDecode(f *testing.F) {
	f.Add([]byte(messageLine))
	f.Add([]byte(`{"type":"READY","user":{"id":"1"}}`))
	f.Add([]byte(`{"type":"MESSAGE_CREATE","message":{"embeds":[1,"x",null,{}]}}`))
	f.Add([]byte(`{"type":""}`))
	f.Add([]byte(""))
	f.Add([]byte("{"))

	f.Fuzz(func(t *testing.T, line []byte) {
		ev, err := Decode(line)
		if err != nil {
			if ev != nil {
				t.Fatalf("Decode returned event with error: %v", err)
			}
			return
		}
		if ev == nil {
			return
		}
		if ev.Type == "" {
			t.Fatal("decoded event without type")
		}

		msg := ev.ToMessage()
		if ev.Type == TypeMessageCreate && msg == nil {
			t.Fatal("MESSAGE_CREATE produced no message")
		}
		d := NewDirectory("")
		d.Observe(ev)
	})
}
