package bot

import (
	"fmt"
	"time"
)

// User-facing texts. The bot speaks Indonesian.
const (
	textGreeting       = "Halo! Gunakan /chat untuk meminta obrolan dengan admin."
	textAdminCannotUse = "Admin tidak bisa menggunakan perintah ini."
	textAdminOnly      = "Perintah ini hanya untuk admin."
	textInSession      = "Kamu sedang dalam sesi obrolan. Gunakan /stop untuk mengakhiri."
	textNotQueued      = "Kamu tidak ada dalam antrian saat ini."
	textConnectedUser  = "Kamu sekarang terhubung dengan admin. Silakan kirim pesan."
	textChatEnded      = "Obrolan telah berakhir. Terima kasih!"
	textNotInSession   = "Kamu tidak sedang dalam sesi obrolan."
	textTurnNear       = "Giliranmu hampir tiba. Bersiaplah untuk obrolan."
	textLeftQueue      = "Kamu telah keluar dari antrian."
	textChatTimeout    = "Sesi obrolan berakhir karena tidak ada aktivitas."
	textUseChat        = "Gunakan /chat untuk meminta obrolan dengan admin."
	textNoSession      = "Tidak ada sesi aktif."

	stopButtonLabel = "❌ Akhiri Obrolan"
)

func queuedText(pos, total int) string {
	return fmt.Sprintf("Kamu telah masuk dalam antrian. Kamu di posisi #%d dari %d. Mohon menunggu.", pos, total)
}

func alreadyQueuedText(pos, total int) string {
	return fmt.Sprintf("Kamu sudah ada dalam antrian di posisi #%d dari %d. Mohon bersabar.", pos, total)
}

func queuePositionText(pos, total int) string {
	return fmt.Sprintf("Kamu saat ini di posisi #%d dari %d antrian.", pos, total)
}

func queueFullText(max int) string {
	return fmt.Sprintf("Maaf, antrian sedang penuh (maksimal %d pengguna). Silakan coba lagi nanti.", max)
}

func adminConnectedText(user int64) string {
	return fmt.Sprintf("User %d sekarang terhubung. Obrolan dimulai.", user)
}

func adminChatEndedText(user int64) string {
	return fmt.Sprintf("Obrolan dengan user %d telah berakhir.", user)
}

func sendFailedText(err error) string {
	return fmt.Sprintf("Gagal mengirim pesan: %v", err)
}

func statusIdleText(queueLen int) string {
	return fmt.Sprintf("Tidak ada sesi aktif. Antrian: %d pengguna.", queueLen)
}

func statusActiveText(user int64, dur time.Duration, queueLen int) string {
	return fmt.Sprintf("Sesi aktif dengan user %d (durasi %s). Antrian: %d pengguna.",
		user, dur.Round(time.Second), queueLen)
}
