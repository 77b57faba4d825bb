package handlers

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"guardian-bot/bot"
	"guardian-bot/utils"
	"guardian-bot/utils/database"

	"github.com/bwmarrin/discordgo"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

func SystemInfoHandler(s *discordgo.Session, i *discordgo.InteractionCreate, b *bot.Bot) {
	cpuCount, _ := cpu.Counts(true)
	cpuPercent, _ := cpu.Percent(0, false)
	vm, _ := mem.VirtualMemory()
	hostInfo, _ := host.Info()

	cpuUsage := 0.0
	if len(cpuPercent) > 0 {
		cpuUsage = cpuPercent[0]
	}

	var dbSize int64
	if info, err := os.Stat(b.GetConfig().DBPath); err == nil {
		dbSize = info.Size() / 1024 / 1024
	}

	pendingActions, _ := database.CountPendingActions(b.DB)
	pendingDeescalations, _ := database.CountPendingDeescalations(b.DB)

	embed := &discordgo.MessageEmbed{
		Title: "System Status",
		Color: 0x5865F2, // Discord Blurple
		Fields: []*discordgo.MessageEmbedField{
			{Name: "💻 OS", Value: fmt.Sprintf("%s %s", hostInfo.Platform, hostInfo.PlatformVersion), Inline: true},
			{Name: "🐹 Go", Value: runtime.Version(), Inline: true},
			{Name: "🔼 CPUs", Value: fmt.Sprintf("%d", cpuCount), Inline: true},
			{Name: "🔥 CPU Usage", Value: fmt.Sprintf("%.1f%%", cpuUsage), Inline: true},
			{Name: "🧠 Memory", Value: fmt.Sprintf("%.1f%% (%d MB / %d MB)", vm.UsedPercent, vm.Used/1024/1024, vm.Total/1024/1024), Inline: true},
			{Name: "🗃️ Database Size", Value: fmt.Sprintf("%d MB", dbSize), Inline: true},
			{Name: "⏱️ WebSocket Latency", Value: s.HeartbeatLatency().String(), Inline: true},
			{Name: "🚀 Goroutines", Value: fmt.Sprintf("%d", runtime.NumGoroutine()), Inline: true},
			{Name: "🌍 Guilds", Value: fmt.Sprintf("%d", len(s.State.Guilds)), Inline: true},
			{Name: "⏳ Pending Actions", Value: fmt.Sprintf("%d", pendingActions), Inline: true},
			{Name: "📉 Pending Deescalations", Value: fmt.Sprintf("%d", pendingDeescalations), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("System status · %s", time.Now().Format("15:04")),
		},
	}

	utils.SendEmbedResponse(s, i, embed)
}
