package models

// Типы уроков внутри секции курса.
const (
	LessonVideo    = "video"
	LessonText     = "text"
	LessonQuiz     = "quiz"
	LessonDocument = "document"
)

// Formation представляет курс: упорядоченный набор секций с уроками.
// Курс принадлежит ровно одному автору, флаг IsActive управляется
// только суперадминистратором и действует для всех компаний.
type Formation struct {
	ID          int    // Идентификатор курса
	Title       string // Название курса
	Description string // Описание курса
	AuthorUUID  string // Автор-владелец курса
	IsActive    bool   // Доступен ли курс для назначения
}

// Section представляет секцию курса.
type Section struct {
	ID          int    // Идентификатор секции
	FormationID int    // Курс, к которому относится секция
	Title       string // Название секции
	Position    int    // Порядковый номер внутри курса
}

// Lesson представляет урок внутри секции.
type Lesson struct {
	ID          int    // Идентификатор урока
	SectionID   int    // Секция, к которой относится урок
	Title       string // Название урока
	LessonType  string // Тип урока: video, text, quiz, document
	Position    int    // Порядковый номер внутри секции
	IsPublished bool   // Опубликован ли урок
}

// DummyFormation используется для приёма данных нового курса из JSON-запроса.
type DummyFormation struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
}

// DummySection используется для приёма данных новой секции.
type DummySection struct {
	Title    string `json:"title" validate:"required"`
	Position int    `json:"position" validate:"required,gt=0"`
}

// DummyLesson используется для приёма данных нового урока.
type DummyLesson struct {
	SectionID   int    `json:"section_id" validate:"required,gt=0"`
	Title       string `json:"title" validate:"required"`
	LessonType  string `json:"lesson_type" validate:"required,oneof=video text quiz document"`
	Position    int    `json:"position" validate:"required,gt=0"`
	IsPublished bool   `json:"is_published"`
}

// DummyAssign используется для назначения курса сотруднику.
type DummyAssign struct {
	AccountUUID string `json:"account_uuid" validate:"required,uuid"`
}
