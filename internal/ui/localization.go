package ui

import "github.com/ytget/yt-mp3/internal/pipeline"

// Localization manages UI text translations
type Localization struct {
	currentLanguage string
	texts           map[string]map[string]string
}

// Text keys for localization
const (
	KeyAppTitle         = "app_title"
	KeyConvert          = "convert"
	KeySettings         = "settings"
	KeyFile             = "file"
	KeyLanguage         = "language"
	KeyBitrate          = "bitrate"
	KeyOutputFolder     = "output_folder"
	KeyChangeFolder     = "change_folder"
	KeyShowInFolder     = "show_in_folder"
	KeyPlayLastFile     = "play_last_file"
	KeySave             = "save"
	KeyCancel           = "cancel"
	KeyBrowse           = "browse"
	KeyEnterURL         = "enter_url"
	KeyReady            = "ready"
	KeySettingsSaved    = "settings_saved"
	KeyErrorOpeningFile = "error_opening_file"
	KeyInvalidURL       = "invalid_url"
	KeyPleaseEnterURL   = "please_enter_url"
	KeyBusy             = "busy"
	KeyCancelled        = "cancelled"
	KeyResolving        = "resolving"
	KeyDownloading      = "downloading"
	KeyConverting       = "converting"
	KeySuccess          = "success"
	KeyFailed           = "failed"
	KeyNoOutputYet      = "no_output_yet"
)

// statusKeys maps the pipeline's status messages onto text keys
var statusKeys = map[string]string{
	pipeline.MessageResolving:   KeyResolving,
	pipeline.MessageDownloading: KeyDownloading,
	pipeline.MessageConverting:  KeyConverting,
	pipeline.MessageSuccess:     KeySuccess,
	pipeline.MessageFailed:      KeyFailed,
}

// NewLocalization creates a new localization manager
func NewLocalization() *Localization {
	l := &Localization{
		currentLanguage: "en",
		texts:           make(map[string]map[string]string),
	}

	l.initializeTexts()
	return l
}

// SetLanguage sets the current language
func (l *Localization) SetLanguage(lang string) {
	if lang == "system" || lang == "" {
		lang = "en"
	}

	if _, exists := l.texts[lang]; exists {
		l.currentLanguage = lang
	}
}

// GetText returns localized text for the given key
func (l *Localization) GetText(key string) string {
	if texts, exists := l.texts[l.currentLanguage]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	// Fallback to English
	if texts, exists := l.texts["en"]; exists {
		if text, found := texts[key]; found {
			return text
		}
	}

	return key
}

// StatusText translates a pipeline status message. Unknown messages are
// returned as is.
func (l *Localization) StatusText(message string) string {
	if key, ok := statusKeys[message]; ok {
		return l.GetText(key)
	}
	return message
}

// GetCurrentLanguage returns the current language code
func (l *Localization) GetCurrentLanguage() string {
	return l.currentLanguage
}

// GetAvailableLanguages returns map of available languages with their display names
func (l *Localization) GetAvailableLanguages() map[string]string {
	return map[string]string{
		"en": "English",
		"ru": "Русский",
		"pt": "Português",
	}
}

func (l *Localization) initializeTexts() {
	l.texts["en"] = map[string]string{
		KeyAppTitle:         "YT to MP3",
		KeyConvert:          "Convert",
		KeySettings:         "Settings",
		KeyFile:             "File",
		KeyLanguage:         "Language",
		KeyBitrate:          "Bitrate",
		KeyOutputFolder:     "Output Folder",
		KeyChangeFolder:     "Change Folder...",
		KeyShowInFolder:     "Show Last File in Folder",
		KeyPlayLastFile:     "Play Last File",
		KeySave:             "Save",
		KeyCancel:           "Cancel",
		KeyBrowse:           "Browse",
		KeyEnterURL:         "Enter YouTube URL (https://youtube.com/watch?v=...)",
		KeyReady:            "Ready",
		KeySettingsSaved:    "Settings saved successfully!",
		KeyErrorOpeningFile: "Error opening file",
		KeyInvalidURL:       "Invalid URL",
		KeyPleaseEnterURL:   "Please enter a URL",
		KeyBusy:             "A conversion is already running",
		KeyCancelled:        "Cancelled",
		KeyResolving:        "Fetching video info...",
		KeyDownloading:      "Downloading...",
		KeyConverting:       "Converting...",
		KeySuccess:          "Conversion successful!",
		KeyFailed:           "Conversion failed",
		KeyNoOutputYet:      "Nothing converted yet",
	}

	l.texts["ru"] = map[string]string{
		KeyAppTitle:         "YT в MP3",
		KeyConvert:          "Конвертировать",
		KeySettings:         "Настройки",
		KeyFile:             "Файл",
		KeyLanguage:         "Язык",
		KeyBitrate:          "Битрейт",
		KeyOutputFolder:     "Папка сохранения",
		KeyChangeFolder:     "Сменить папку...",
		KeyShowInFolder:     "Показать последний файл",
		KeyPlayLastFile:     "Воспроизвести последний файл",
		KeySave:             "Сохранить",
		KeyCancel:           "Отмена",
		KeyBrowse:           "Обзор",
		KeyEnterURL:         "Введите URL YouTube (https://youtube.com/watch?v=...)",
		KeyReady:            "Готово к работе",
		KeySettingsSaved:    "Настройки успешно сохранены!",
		KeyErrorOpeningFile: "Ошибка открытия файла",
		KeyInvalidURL:       "Неверный URL",
		KeyPleaseEnterURL:   "Пожалуйста, введите URL",
		KeyBusy:             "Конвертация уже выполняется",
		KeyCancelled:        "Отменено",
		KeyResolving:        "Получение информации о видео...",
		KeyDownloading:      "Загрузка...",
		KeyConverting:       "Конвертация...",
		KeySuccess:          "Конвертация завершена!",
		KeyFailed:           "Ошибка конвертации",
		KeyNoOutputYet:      "Пока ничего не сконвертировано",
	}

	l.texts["pt"] = map[string]string{
		KeyAppTitle:         "YT para MP3",
		KeyConvert:          "Converter",
		KeySettings:         "Configurações",
		KeyFile:             "Arquivo",
		KeyLanguage:         "Idioma",
		KeyBitrate:          "Taxa de bits",
		KeyOutputFolder:     "Pasta de saída",
		KeyChangeFolder:     "Mudar pasta...",
		KeyShowInFolder:     "Mostrar último arquivo na pasta",
		KeyPlayLastFile:     "Reproduzir último arquivo",
		KeySave:             "Salvar",
		KeyCancel:           "Cancelar",
		KeyBrowse:           "Navegar",
		KeyEnterURL:         "Digite URL do YouTube (https://youtube.com/watch?v=...)",
		KeyReady:            "Pronto",
		KeySettingsSaved:    "Configurações salvas com sucesso!",
		KeyErrorOpeningFile: "Erro ao abrir arquivo",
		KeyInvalidURL:       "URL inválida",
		KeyPleaseEnterURL:   "Por favor, digite uma URL",
		KeyBusy:             "Uma conversão já está em andamento",
		KeyCancelled:        "Cancelado",
		KeyResolving:        "Obtendo informações do vídeo...",
		KeyDownloading:      "Baixando...",
		KeyConverting:       "Convertendo...",
		KeySuccess:          "Conversão concluída!",
		KeyFailed:           "Falha na conversão",
		KeyNoOutputYet:      "Nada convertido ainda",
	}
}
