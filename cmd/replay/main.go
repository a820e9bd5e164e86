package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"trade-dashboard-go/gateway"
	"trade-dashboard-go/internal/store"
)

// 离线回放工具：把抓下来的私有流 JSONL 喂进对账引擎，输出交易台账与绩效。
// 用法：
//
//	go run ./cmd/replay -file captures/session.jsonl
func main() {
	filePath := flag.String("file", "", "私有流抓包文件（每行一条原始 JSON 消息）")
	epsilon := flag.Float64("epsilon", 0, "数量配平容差，0 取默认")
	verbose := flag.Bool("v", false, "打印每条事件的处理结果")
	flag.Parse()

	if *filePath == "" {
		log.Fatal("缺少 -file 参数")
	}
	f, err := os.Open(*filePath)
	if err != nil {
		log.Fatalf("打开文件失败: %v", err)
	}
	defer f.Close()

	var sink store.EventSink
	if *verbose {
		sink = func(event string, fields map[string]interface{}) {
			fmt.Printf("%-22s %v\n", event, fields)
		}
	}
	st := store.New(store.Config{Epsilon: *epsilon}, sink)

	var lines, skipped int
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines++
		msg, err := gateway.ParseMessage([]byte(line))
		if err != nil {
			skipped++
			continue
		}
		switch msg.Kind {
		case gateway.KindOrder:
			st.OnOrderUpdates(msg.Orders)
		case gateway.KindPosition:
			st.OnPositionUpdates(msg.Positions)
		default:
			skipped++
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("读取文件失败: %v", err)
	}

	snap := st.Snapshot()
	fmt.Printf("\nlines=%d skipped=%d events=%d trades=%d\n\n",
		lines, skipped, snap.EventsTotal, len(snap.Trades))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tQTY\tENTRY\tEXIT\tPNL\tFEES")
	for _, tr := range snap.Trades {
		fmt.Fprintf(w, "%s\t%.6f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			tr.Symbol, tr.Qty, tr.EntryPrice, tr.ExitPrice, tr.RealizedPnL, tr.Fees)
	}
	w.Flush()

	s := snap.Stats
	fmt.Printf("\ntrades=%d win=%d loss=%d winRate=%.2f%% totalPnL=%.4f avgWin=%.4f avgLoss=%.4f profitFactor=%.2f\n",
		s.TotalTrades, s.WinCount, s.LossCount, s.WinRate, s.TotalPnL, s.AvgWin, s.AvgLoss, s.ProfitFactor)

	if openQty, closeQty := snap.OpeningQty, snap.ClosingQty; openQty > 0 || closeQty > 0 {
		fmt.Printf("unmatched group: opening=%.6f closing=%.6f pendings=%d\n",
			openQty, closeQty, len(snap.PendingPartials))
	}
}
