package formatting

import "github.com/Freeeeeet/streamer_booking/internal/model"

// BookingStatusDisplay представляет отображение статуса бронирования
type BookingStatusDisplay struct {
	Emoji string
	Text  string
}

// GetBookingStatusDisplay возвращает emoji и текст для статуса бронирования
func GetBookingStatusDisplay(status model.BookingStatus) BookingStatusDisplay {
	displays := map[model.BookingStatus]BookingStatusDisplay{
		model.BookingStatusPending:             {"⏳", "Menunggu pembayaran"},
		model.BookingStatusConfirmed:           {"💳", "Sudah dibayar"},
		model.BookingStatusAccepted:            {"✅", "Diterima"},
		model.BookingStatusCompleted:           {"✔️", "Selesai"},
		model.BookingStatusCancelled:           {"❌", "Dibatalkan"},
		model.BookingStatusRejected:            {"🚫", "Ditolak"},
		model.BookingStatusRescheduleRequested: {"🔁", "Menunggu jadwal ulang"},
	}

	if display, ok := displays[status]; ok {
		return display
	}

	return BookingStatusDisplay{"❓", "Tidak diketahui"}
}
