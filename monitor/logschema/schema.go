package logschema

import (
	"fmt"
	"sort"
	"strings"
)

// Schema 定义每个日志事件所需的关键字段，便于集中校验。
type Schema struct {
	Event    string
	Required []string
}

var schemas = map[string]Schema{
	"order_update": {
		Event:    "order_update",
		Required: []string{"symbol", "order_id", "status", "side"},
	},
	"order_duplicate": {
		Event:    "order_duplicate",
		Required: []string{"symbol", "order_id"},
	},
	"order_out_of_sequence": {
		Event:    "order_out_of_sequence",
		Required: []string{"symbol", "order_id", "status"},
	},
	"position_update": {
		Event:    "position_update",
		Required: []string{"symbol", "side", "size"},
	},
	"trade_completed": {
		Event:    "trade_completed",
		Required: []string{"symbol", "qty", "entry_price", "exit_price", "realized_pnl"},
	},
	"ws_state": {
		Event:    "ws_state",
		Required: []string{"state"},
	},
	"event_malformed": {
		Event:    "event_malformed",
		Required: []string{"bytes"},
	},
}

// Known 返回所有事件名，便于外部生成文档。
func Known() []string {
	names := make([]string, 0, len(schemas))
	for k := range schemas {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Validate 检查日志字段是否包含 schema 中要求的 key。
func Validate(event string, fields map[string]interface{}) error {
	s, ok := schemas[event]
	if !ok {
		return nil
	}
	var missing []string
	for _, key := range s.Required {
		if _, exists := fields[key]; !exists {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing fields: %s", strings.Join(missing, ","))
	}
	return nil
}
