package handlers

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"studio/internal/domain"
	"studio/internal/profile"
)

type validationText struct {
	title   string
	message string
}

type validationEntry struct {
	en   validationText
	id   validationText
	args []any
}

var validationMessages = map[string]validationEntry{
	domain.CodeEmptyPrompt: {
		en: validationText{"Prompt Required", "Please enter a prompt to generate an image."},
		id: validationText{"Prompt Diperlukan", "Masukkan prompt untuk membuat gambar."},
	},
	domain.CodeUnknownModel: {
		en: validationText{"Unknown Model", "Choose one of the available models."},
		id: validationText{"Model Tidak Dikenal", "Pilih salah satu model yang tersedia."},
	},
	domain.CodeUnknownQuality: {
		en: validationText{"Unknown Quality", "Choose basic, standard or high quality."},
		id: validationText{"Kualitas Tidak Dikenal", "Pilih kualitas basic, standard atau high."},
	},
	domain.CodeInvalidSize: {
		en: validationText{"Unsupported Size", "Choose one of the supported output sizes."},
		id: validationText{"Ukuran Tidak Didukung", "Pilih salah satu ukuran keluaran yang didukung."},
	},
	domain.CodeInsufficientImages: {
		en:   validationText{"Insufficient Images", "Please upload at least %d images to start training."},
		id:   validationText{"Gambar Kurang", "Unggah minimal %d gambar untuk memulai pelatihan."},
		args: []any{domain.MinTrainingImages},
	},
	domain.CodeTooManyImages: {
		en:   validationText{"Too Many Images", "You can upload at most %d images."},
		id:   validationText{"Gambar Terlalu Banyak", "Anda hanya dapat mengunggah maksimal %d gambar."},
		args: []any{domain.MaxTrainingImages},
	},
	domain.CodeUnknownTier: {
		en: validationText{"Unknown Tier", "Choose quick, standard or professional training."},
		id: validationText{"Paket Tidak Dikenal", "Pilih pelatihan quick, standard atau professional."},
	},
	domain.CodeEmptyImageURI: {
		en: validationText{"Missing Image", "Every uploaded image needs a location."},
		id: validationText{"Gambar Kosong", "Setiap gambar yang diunggah harus memiliki lokasi."},
	},
	domain.CodeUnknownTool: {
		en: validationText{"Unknown Tool", "Choose one of the editor tools."},
		id: validationText{"Alat Tidak Dikenal", "Pilih salah satu alat editor."},
	},
	domain.CodeUnknownOutfit: {
		en: validationText{"Unknown Outfit", "Choose one of the outfit presets."},
		id: validationText{"Pakaian Tidak Dikenal", "Pilih salah satu preset pakaian."},
	},
	domain.CodeInvalidFeature: {
		en: validationText{"Invalid Feature", "Feature adjustments must be between 0 and 100."},
		id: validationText{"Fitur Tidak Valid", "Penyesuaian fitur harus antara 0 dan 100."},
	},
	domain.CodeMissingSource: {
		en: validationText{"No Image Selected", "Select an image to edit first."},
		id: validationText{"Belum Ada Gambar", "Pilih gambar yang akan diedit terlebih dahulu."},
	},
	domain.CodeUnknownFacet: {
		en: validationText{"Unknown Filter", "Choose one of the explore filters."},
		id: validationText{"Filter Tidak Dikenal", "Pilih salah satu filter jelajah."},
	},
	domain.CodeInvalidCallback: {
		en: validationText{"Invalid Callback", "The sign-in callback could not be read."},
		id: validationText{"Callback Tidak Valid", "Callback masuk tidak dapat dibaca."},
	},
	domain.CodeUnsupportedFile: {
		en: validationText{"Unsupported File", "Upload a JPEG, PNG, WebP or HEIC image."},
		id: validationText{"Berkas Tidak Didukung", "Unggah gambar JPEG, PNG, WebP atau HEIC."},
	},
	profile.CodeUnknownTab: {
		en: validationText{"Unknown Tab", "Choose posts or liked."},
		id: validationText{"Tab Tidak Dikenal", "Pilih posts atau liked."},
	},
}

func init() {
	for code, entry := range validationMessages {
		for _, tr := range []struct {
			tag  language.Tag
			text validationText
		}{{language.English, entry.en}, {language.Indonesian, entry.id}} {
			_ = message.SetString(tr.tag, titleKey(code), tr.text.title)
			_ = message.SetString(tr.tag, messageKey(code), tr.text.message)
		}
	}
}

func titleKey(code string) string   { return "validation." + code + ".title" }
func messageKey(code string) string { return "validation." + code + ".message" }

// localizeValidation renders the title and message for ve in locale.
// Unknown codes fall back to the error text.
func localizeValidation(locale string, ve *domain.ValidationError) (string, string) {
	entry, ok := validationMessages[ve.Code]
	if !ok {
		return "", ve.Error()
	}
	tag := language.English
	if locale == "id" {
		tag = language.Indonesian
	}
	p := message.NewPrinter(tag)
	return p.Sprintf(titleKey(ve.Code)), p.Sprintf(messageKey(ve.Code), entry.args...)
}
