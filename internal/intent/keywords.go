package intent

// KeywordTableVersion identifies the built-in corpus so learned-pattern
// exports can record which vocabulary they were classified against.
const KeywordTableVersion = 7

// langFamily groups the patterns of one language for one intent. Patterns
// are stored pre-normalized: lowercase, single spaces, no leading/trailing
// whitespace. Multi-word patterns compile whitespace-flexible.
type langFamily struct {
	lang     string
	patterns []string
}

// denyFamilies covers outright refusal plus the "only necessary" phrasings
// that CMPs use as a reject-equivalent.
var denyFamilies = []langFamily{
	{"en", []string{
		"reject all", "reject", "decline all", "decline", "refuse all", "refuse",
		"deny all", "deny", "i do not agree", "do not agree", "i disagree", "disagree",
		"i do not accept", "do not accept", "no thanks", "no, thanks",
		"continue without accepting", "continue without agreeing", "continue without consent",
		"opt out", "opt-out", "object to all", "object all",
		"only essential", "only necessary", "essential only", "necessary only",
		"necessary cookies only", "essential cookies only", "use necessary cookies only",
		"reject non-essential", "reject optional", "disable all",
	}},
	{"de", []string{
		"alle ablehnen", "alles ablehnen", "ablehnen", "verweigern", "widersprechen",
		"nicht zustimmen", "nicht einverstanden", "keine zustimmung",
		"nur notwendige", "nur erforderliche", "nur notwendige cookies",
		"nur technisch notwendige", "weiter ohne einwilligung", "ohne einwilligung fortfahren",
		"alle verweigern",
	}},
	{"fr", []string{
		"tout refuser", "refuser tout", "refuser", "rejeter", "je refuse",
		"ne pas accepter", "continuer sans accepter", "poursuivre sans accepter",
		"uniquement les cookies nécessaires", "cookies nécessaires uniquement",
		"tout rejeter", "s'opposer à tout",
	}},
	{"es", []string{
		"rechazar todo", "rechazarlas todas", "rechazar todas", "rechazar", "denegar",
		"no acepto", "no aceptar", "continuar sin aceptar", "seguir sin aceptar",
		"solo las necesarias", "solo necesarias", "solo esenciales", "solo las esenciales",
	}},
	{"it", []string{
		"rifiuta tutto", "rifiuta tutti", "rifiuta", "rifiutare", "non accetto",
		"non acconsento", "continua senza accettare",
		"solo necessari", "solo i necessari", "solo essenziali", "solo cookie tecnici",
	}},
	{"pt", []string{
		"rejeitar tudo", "rejeitar todos", "rejeitar", "recusar tudo", "recusar",
		"não aceito", "nao aceito", "não aceitar", "continuar sem aceitar",
		"apenas essenciais", "apenas necessários", "apenas os necessários",
	}},
	{"nl", []string{
		"alles weigeren", "alle weigeren", "weigeren", "afwijzen", "niet akkoord",
		"niet accepteren", "doorgaan zonder te accepteren",
		"alleen noodzakelijke", "alleen noodzakelijke cookies", "alleen functionele cookies",
	}},
	{"sv", []string{
		"avvisa alla", "avvisa", "neka alla", "neka", "avböj alla", "avböj",
		"endast nödvändiga", "bara nödvändiga", "godkänn inte",
	}},
	{"da", []string{
		"afvis alle", "afvis", "nej tak", "kun nødvendige", "kun nødvendige cookies",
	}},
	{"no", []string{
		"avslå alle", "avslå", "avvis alle", "avvis", "bare nødvendige", "kun nødvendige",
	}},
	{"fi", []string{
		"hylkää kaikki", "hylkää", "vain välttämättömät", "en hyväksy",
	}},
	{"pl", []string{
		"odrzuć wszystkie", "odrzuć wszystko", "odrzuć", "nie zgadzam się",
		"nie wyrażam zgody", "tylko niezbędne", "tylko konieczne",
	}},
	{"cs", []string{
		"odmítnout vše", "odmítnout", "nesouhlasím", "pouze nezbytné", "pouze nutné",
	}},
	{"ru", []string{
		"отклонить все", "отклонить всё", "отклонить", "отказаться", "отказаться от всех",
		"не принимаю", "не согласен", "не согласна", "только необходимые",
	}},
	{"tr", []string{
		"tümünü reddet", "hepsini reddet", "reddet", "kabul etmiyorum",
		"yalnızca gerekli", "sadece gerekli olanlar",
	}},
	{"ja", []string{
		"すべて拒否", "全て拒否", "拒否する", "拒否", "同意しない", "承諾しない",
		"必要なもののみ", "必須のみ許可",
	}},
	{"zh", []string{
		"全部拒绝", "拒绝全部", "拒绝所有", "拒绝", "不同意", "不接受",
		"仅必要", "僅必要", "全部拒絕", "拒絕",
	}},
	{"ko", []string{
		"모두 거부", "거부", "동의 안 함", "동의하지 않음", "필수만 허용",
	}},
}

// acceptFamilies is deliberately broad: dismiss-style wording ("Got it",
// "OK") counts as consent so the engine never clicks it by mistake.
var acceptFamilies = []langFamily{
	{"en", []string{
		"accept all", "accept everything", "accept cookies", "accept and close",
		"accept and continue", "accept", "allow all", "allow cookies", "allow",
		"agree and continue", "agree to all", "i agree", "agree", "i consent", "consent",
		"enable all", "turn on all", "got it", "i understand", "understood",
		"sounds good", "ok", "okay", "yes", "continue",
	}},
	{"de", []string{
		"alle akzeptieren", "alles akzeptieren", "akzeptieren", "alle zulassen", "zulassen",
		"zustimmen", "stimme zu", "einverstanden", "verstanden", "annehmen",
		"alle erlauben", "erlauben", "weiter",
	}},
	{"fr", []string{
		"tout accepter", "accepter tout", "accepter", "j'accepte", "tout autoriser",
		"autoriser", "d'accord", "j'ai compris", "compris", "continuer", "oui",
	}},
	{"es", []string{
		"aceptar todo", "aceptar todas", "aceptar", "acepto", "permitir todas",
		"permitir", "de acuerdo", "entendido", "estoy de acuerdo", "continuar", "vale",
	}},
	{"it", []string{
		"accetta tutto", "accetta tutti", "accetta", "accettare", "acconsento",
		"consenti tutto", "consenti", "ho capito", "va bene", "continua",
	}},
	{"pt", []string{
		"aceitar tudo", "aceitar todos", "aceitar", "aceito", "permitir todos",
		"permitir", "concordo", "entendi", "compreendi", "continuar",
	}},
	{"nl", []string{
		"alles accepteren", "alle accepteren", "accepteren", "akkoord", "ik ga akkoord",
		"alles toestaan", "toestaan", "begrepen", "doorgaan",
	}},
	{"sv", []string{
		"acceptera alla", "acceptera", "godkänn alla", "godkänn", "tillåt alla",
		"tillåt", "jag förstår", "fortsätt",
	}},
	{"da", []string{
		"accepter alle", "accepter", "tillad alle", "tillad", "jeg forstår", "fortsæt",
	}},
	{"no", []string{
		"godta alle", "godta", "aksepter alle", "aksepter", "jeg forstår", "fortsett",
	}},
	{"fi", []string{
		"hyväksy kaikki", "hyväksy", "salli kaikki", "salli", "ymmärrän", "jatka",
	}},
	{"pl", []string{
		"zaakceptuj wszystkie", "akceptuj wszystkie", "akceptuję", "akceptuj",
		"zgadzam się", "zezwól na wszystkie", "zezwól", "rozumiem", "kontynuuj",
	}},
	{"cs", []string{
		"přijmout vše", "přijmout", "souhlasím", "povolit vše", "povolit", "rozumím",
	}},
	{"ru", []string{
		"принять все", "принять всё", "принять", "принимаю", "согласен", "согласна",
		"согласиться", "разрешить все", "разрешить", "понятно", "продолжить", "да",
	}},
	{"tr", []string{
		"tümünü kabul et", "hepsini kabul et", "kabul et", "kabul ediyorum",
		"izin ver", "anladım", "tamam", "devam et",
	}},
	{"ja", []string{
		"すべて同意", "すべてに同意", "同意する", "同意", "すべて許可", "許可する",
		"許可", "承認", "了解",
	}},
	{"zh", []string{
		"全部接受", "接受全部", "接受所有", "接受", "全部同意", "同意", "允许",
		"允許", "我知道了", "知道了", "继续", "繼續",
	}},
	{"ko", []string{
		"모두 동의", "동의", "모두 수락", "수락", "모두 허용", "허용", "계속",
	}},
}

// manageFamilies opens the preferences surface. Bare policy links ("Learn
// more") are excluded: they tend to navigate away instead of opening a panel.
var manageFamilies = []langFamily{
	{"en", []string{
		"manage settings", "manage preferences", "manage options", "manage choices",
		"manage cookies", "manage", "cookie settings", "cookie preferences",
		"privacy settings", "privacy options", "customize", "customise",
		"personalize", "personalise", "configure", "advanced settings",
		"more options", "let me choose", "set preferences", "select preferences",
		"vendor preferences", "purposes", "settings", "preferences", "options",
	}},
	{"de", []string{
		"einstellungen verwalten", "cookie-einstellungen", "cookie einstellungen",
		"datenschutz-einstellungen", "einstellungen", "verwalten", "anpassen",
		"konfigurieren", "auswahl treffen", "individuelle einstellungen",
		"mehr optionen", "zwecke anzeigen", "optionen",
	}},
	{"fr", []string{
		"gérer les paramètres", "gérer les préférences", "gérer les cookies", "gérer",
		"paramètres des cookies", "paramètres", "paramétrer", "personnaliser",
		"configurer", "plus d'options", "préférences",
	}},
	{"es", []string{
		"gestionar preferencias", "gestionar cookies", "gestionar",
		"configuración de cookies", "configuración", "configurar", "personalizar",
		"ajustes", "más opciones", "preferencias",
	}},
	{"it", []string{
		"gestisci le preferenze", "gestisci i cookie", "gestisci", "impostazioni cookie",
		"impostazioni", "personalizza", "configura", "più opzioni", "preferenze",
	}},
	{"pt", []string{
		"gerenciar preferências", "gerir preferências", "gerenciar", "gerir",
		"definições de cookies", "configurações", "definições", "personalizar",
		"configurar", "mais opções", "preferências",
	}},
	{"nl", []string{
		"voorkeuren beheren", "cookies beheren", "beheren", "cookie-instellingen",
		"instellingen", "aanpassen", "meer opties", "voorkeuren",
	}},
	{"sv", []string{
		"hantera inställningar", "hantera cookies", "hantera", "cookie-inställningar",
		"inställningar", "anpassa", "fler alternativ",
	}},
	{"da", []string{
		"administrer indstillinger", "administrer", "indstillinger", "tilpas", "flere valg",
	}},
	{"no", []string{
		"administrer innstillinger", "administrer", "innstillinger", "tilpass", "flere valg",
	}},
	{"fi", []string{
		"hallitse asetuksia", "hallitse", "evästeasetukset", "asetukset", "mukauta",
	}},
	{"pl", []string{
		"zarządzaj ustawieniami", "zarządzaj", "ustawienia plików cookie", "ustawienia",
		"dostosuj", "więcej opcji",
	}},
	{"cs", []string{
		"spravovat nastavení", "spravovat", "nastavení", "přizpůsobit", "více možností",
	}},
	{"ru", []string{
		"управление настройками", "управлять", "настройки файлов cookie", "настройки",
		"настроить", "параметры", "больше опций",
	}},
	{"tr", []string{
		"tercihleri yönet", "çerezleri yönet", "yönet", "çerez ayarları", "ayarlar",
		"özelleştir", "daha fazla seçenek",
	}},
	{"ja", []string{
		"設定を管理", "詳細設定", "クッキー設定", "設定", "管理", "カスタマイズ",
	}},
	{"zh", []string{
		"管理偏好", "偏好设置", "偏好設置", "管理", "设置", "設置", "自定义", "自訂",
		"更多选项", "更多選項",
	}},
	{"ko", []string{
		"맞춤 설정", "쿠키 설정", "설정 관리", "설정", "관리",
	}},
}

// confirmFamilies persists whatever is currently selected. "Accept selection"
// phrasings live here, not in accept: they commit choices rather than grant
// blanket consent.
var confirmFamilies = []langFamily{
	{"en", []string{
		"save and exit", "save & exit", "save and close", "save settings",
		"save preferences", "save my preferences", "save choices", "save selection",
		"save", "confirm my choices", "confirm choices", "confirm selection",
		"confirm preferences", "confirm", "apply", "submit preferences", "submit",
		"done", "finish", "accept selection", "accept my choices", "allow selection",
	}},
	{"de", []string{
		"speichern und schließen", "auswahl speichern", "einstellungen speichern",
		"speichern", "auswahl bestätigen", "bestätigen", "übernehmen", "anwenden",
		"fertig", "auswahl akzeptieren", "auswahl erlauben",
	}},
	{"fr", []string{
		"enregistrer et fermer", "enregistrer les préférences", "enregistrer",
		"sauvegarder", "valider mes choix", "valider", "confirmer mes choix",
		"confirmer", "appliquer", "terminer", "accepter la sélection",
	}},
	{"es", []string{
		"guardar y salir", "guardar configuración", "guardar preferencias", "guardar",
		"confirmar selección", "confirmar mis preferencias", "confirmar", "aplicar",
		"aceptar selección", "finalizar",
	}},
	{"it", []string{
		"salva e chiudi", "salva impostazioni", "salva le preferenze", "salva",
		"conferma le scelte", "conferma", "applica", "fine", "accetta selezione",
	}},
	{"pt", []string{
		"salvar e fechar", "salvar preferências", "guardar definições", "salvar",
		"guardar", "confirmar seleção", "confirmar", "aplicar", "concluir",
		"aceitar seleção",
	}},
	{"nl", []string{
		"opslaan en sluiten", "voorkeuren opslaan", "opslaan", "keuze bevestigen",
		"bevestigen", "toepassen", "klaar", "selectie accepteren",
	}},
	{"sv", []string{
		"spara och stäng", "spara inställningar", "spara", "bekräfta val", "bekräfta",
		"tillämpa", "klar", "acceptera urval",
	}},
	{"da", []string{
		"gem indstillinger", "gem", "bekræft", "anvend", "færdig",
	}},
	{"no", []string{
		"lagre innstillinger", "lagre", "bekreft", "bruk", "ferdig",
	}},
	{"fi", []string{
		"tallenna asetukset", "tallenna", "vahvista", "valmis",
	}},
	{"pl", []string{
		"zapisz i zamknij", "zapisz ustawienia", "zapisz", "zatwierdź", "potwierdź",
		"zastosuj", "gotowe",
	}},
	{"cs", []string{
		"uložit nastavení", "uložit", "potvrdit", "použít", "hotovo",
	}},
	{"ru", []string{
		"сохранить и закрыть", "сохранить настройки", "сохранить", "подтвердить выбор",
		"подтвердить", "применить", "готово",
	}},
	{"tr", []string{
		"ayarları kaydet", "kaydet", "seçimi onayla", "onayla", "uygula", "bitti",
	}},
	{"ja", []string{
		"設定を保存", "保存", "確認", "確定", "適用", "完了",
	}},
	{"zh", []string{
		"保存设置", "保存并关闭", "保存", "儲存", "确认选择", "確認選擇", "确认",
		"確認", "确定", "確定", "应用", "完成",
	}},
	{"ko", []string{
		"설정 저장", "저장", "확인", "적용", "완료",
	}},
}

// acceptQualifiers block an accept-family match: a label that accepts "the
// selection" commits choices instead of granting blanket consent.
var acceptQualifiers = []string{
	"selection", "selected", "choice", "choices", "chosen", "preferences",
	"necessary", "essential", "required",
	"auswahl", "ausgewählte", "notwendige", "erforderliche",
	"sélection", "la sélection", "nécessaires",
	"selección", "seleccionadas", "necesarias", "esenciales",
	"selezione", "selezionati", "necessari", "essenziali",
	"seleção", "selecionados", "necessários", "essenciais",
	"selectie", "geselecteerde", "noodzakelijke",
	"urval", "valda", "nödvändiga",
	"valgte", "nødvendige",
	"wybrane", "wybór", "niezbędne",
	"výběr", "vybrané", "nezbytné",
	"выбранные", "выбор", "необходимые",
	"seçim", "seçilen", "gerekli",
	"選択", "選択内容", "必須",
	"选择", "所选", "所選", "必要",
	"선택", "필수",
}

// denyNegations block a deny-family match: "Do not reject" is an instruction
// away from refusing, not a refusal.
var denyNegations = []string{
	"do not reject", "don't reject", "dont reject", "do not decline",
	"don't decline", "do not refuse", "don't refuse", "do not deny",
	"never reject", "not reject", "not decline", "not refuse",
	"nicht ablehnen", "nicht verweigern", "nicht widersprechen",
	"ne pas refuser", "ne pas rejeter", "ne refusez pas",
	"no rechazar", "no rechace", "no denegar",
	"non rifiutare", "non rifiuti",
	"não recusar", "nao recusar", "não rejeitar", "nao rejeitar",
	"niet weigeren", "niet afwijzen",
	"inte avvisa", "inte neka",
	"ikke afvis", "ikke avslå",
	"nie odrzucaj", "nie odrzucać",
	"не отклонять", "не отклоняйте", "не отказывайтесь",
	"reddetme", "reddetmeyin",
	"拒否しない", "不要拒绝", "不要拒絕",
}

// mandatoryKeywords mark a control as protected infrastructure: strictly
// necessary categories stay enabled and are only ever recorded as kept.
var mandatoryKeywords = []string{
	"strictly necessary", "necessary", "essential", "required", "mandatory",
	"always active", "always on", "always enabled", "cannot be disabled",
	"can not be disabled", "can't be disabled", "can't be turned off",
	"technically required",
	"unbedingt erforderlich", "technisch notwendig", "notwendig", "erforderlich",
	"immer aktiv", "obligatorisch",
	"strictement nécessaires", "nécessaire", "nécessaires", "essentiel", "essentiels",
	"obligatoire", "toujours actif", "toujours activé", "requis",
	"estrictamente necesarias", "necesarias", "necesarios", "necesario", "esenciales",
	"esencial", "obligatorio", "obligatorias", "siempre activo", "siempre activas",
	"strettamente necessari", "necessari", "necessario", "essenziali", "essenziale",
	"obbligatorio", "sempre attivo", "sempre attivi",
	"estritamente necessários", "necessários", "necessário", "essenciais", "essencial",
	"obrigatório", "sempre ativo", "sempre ativos",
	"strikt noodzakelijk", "noodzakelijk", "noodzakelijke", "essentieel", "essentiële",
	"verplicht", "altijd actief", "altijd aan",
	"strikt nödvändiga", "nödvändiga", "nödvändig", "krävs", "obligatorisk",
	"alltid aktiv", "alltid på",
	"nødvendige", "nødvendig", "påkrævet", "altid aktiv",
	"välttämättömät", "välttämätön", "pakollinen", "aina käytössä",
	"niezbędne", "niezbędny", "konieczne", "wymagane", "obowiązkowe",
	"zawsze aktywne", "zawsze włączone",
	"nezbytné", "nutné", "povinné", "vždy aktivní",
	"строго необходимые", "необходимые", "необходимо", "обязательные", "обязательно",
	"всегда активно", "всегда включено", "технически необходимые",
	"kesinlikle gerekli", "gerekli", "zorunlu", "her zaman etkin",
	"必須", "必要", "常に有効", "厳密に必要",
	"必需", "必须", "始终启用", "始終啟用", "严格必要", "嚴格必要",
	"필수", "항상 활성",
}

// negatedMandatory forms are blanked out of the haystack before the
// mandatory scan: a "Non-necessary" category is precisely the opt-out target.
var negatedMandatory = []string{
	"non-necessary", "non necessary", "not necessary", "unnecessary",
	"non-essential", "non essential", "nonessential", "not essential",
	"not required", "not mandatory", "non-mandatory",
	"nicht notwendig", "nicht notwendige", "nicht erforderlich", "nicht erforderliche",
	"non nécessaire", "non nécessaires", "non essentiel", "non essentiels",
	"no necesarias", "no necesarios", "no esenciales", "no obligatorio",
	"non necessari", "non essenziali",
	"não necessários", "nao necessarios", "não essenciais", "nao essenciais",
	"niet noodzakelijk", "niet noodzakelijke", "niet essentieel",
	"icke nödvändiga", "inte nödvändiga",
	"ikke nødvendige", "ikke nødvendig",
	"zbędne", "nieobowiązkowe", "niewymagane",
	"nepovinné", "nikoli nezbytné",
	"необязательные", "не обязательные", "не являются необходимыми",
	"gerekli olmayan", "zorunlu olmayan",
	"不必要", "非必要", "非必須", "불필요",
}

// privacyTopics signal that a container is about consent at all.
var privacyTopics = []string{
	"cookie", "cookies", "privacy", "consent", "tracking", "tracker", "trackers",
	"gdpr", "ccpa", "personal data", "legitimate interest", "vendors", "partners",
	"rgpd", "dsgvo", "datenschutz", "einwilligung", "personenbezogene daten",
	"confidentialité", "consentement", "données personnelles", "traceurs",
	"privacidad", "consentimiento", "datos personales", "rastreo",
	"privacidade", "consentimento", "dados pessoais",
	"riservatezza", "consenso", "dati personali",
	"privacyverklaring", "toestemming", "persoonsgegevens",
	"integritet", "samtycke", "personuppgifter",
	"personoplysninger", "samtykke", "personopplysninger",
	"tietosuoja", "suostumus", "evästeet", "eväste",
	"prywatność", "zgoda", "dane osobowe", "pliki cookie",
	"soukromí", "souhlas", "osobní údaje", "soubory cookie",
	"конфиденциальность", "согласие", "персональные данные", "файлы cookie", "куки",
	"gizlilik", "onay", "kişisel veriler", "çerez", "çerezler",
	"クッキー", "プライバシー", "個人情報", "トラッキング",
	"隐私", "隱私", "个人信息", "個人資料", "追踪", "追蹤",
	"쿠키", "개인정보", "추적",
}

// decisionWords signal that the container is asking the visitor to choose.
var decisionWords = []string{
	"accept", "agree", "allow", "consent", "reject", "decline", "refuse", "deny",
	"choose", "choice", "select", "manage", "settings", "preferences", "options",
	"akzeptieren", "zustimmen", "ablehnen", "verweigern", "auswahl", "einstellungen",
	"accepter", "refuser", "rejeter", "choisir", "paramètres", "préférences",
	"aceptar", "rechazar", "elegir", "configurar", "ajustes",
	"accetta", "accettare", "rifiuta", "rifiutare", "scegli", "impostazioni",
	"aceitar", "rejeitar", "recusar", "escolher", "definições", "configurações",
	"accepteren", "weigeren", "kiezen", "instellingen", "voorkeuren",
	"acceptera", "avvisa", "neka", "välj", "inställningar",
	"accepter", "afvis", "vælg", "indstillinger",
	"godta", "avslå", "innstillinger",
	"hyväksy", "hylkää", "valitse", "asetukset",
	"zaakceptuj", "akceptuj", "odrzuć", "wybierz", "ustawienia",
	"přijmout", "odmítnout", "vybrat", "nastavení",
	"принять", "отклонить", "выбрать", "настройки", "согласиться",
	"kabul", "reddet", "seç", "ayarlar",
	"同意", "拒否", "選択", "許可", "設定",
	"接受", "拒绝", "拒絕", "选择", "選擇", "允许", "允許", "设置", "設置",
	"동의", "거부", "선택", "허용", "설정",
}

// paywallPhrases flag consent-or-pay walls: surfaces that trade tracking
// consent against a subscription are out of scope and abort the run.
var paywallPhrases = []string{
	"subscribe to continue", "subscribe now", "subscription required",
	"become a member", "become a subscriber", "membership required", "sign up to continue",
	"log in to continue", "sign in to continue", "register to continue",
	"to continue reading", "premium access", "with advertising or",
	"pur-abo", "pur abo", "contentpass", "abonnement", "abonnieren", "mit werbung nutzen",
	"zeitung digital", "jetzt abonnieren",
	"s'abonner", "abonnez-vous", "déjà abonné",
	"suscríbete", "suscripción", "hazte socio",
	"abbonati", "abbonamento",
	"assine", "assinatura", "já é assinante",
	"abonneer", "word lid",
	"prenumerera", "bli medlem",
	"abonner", "bliv medlem",
	"zaprenumeruj", "wykup subskrypcję",
	"оформить подписку", "подписаться",
	"abone ol", "abonelik",
	"購読", "定期購読", "订阅", "訂閱", "구독",
}

// sectionLabels name the tab- and accordion-style sub-panels inside settings
// dialogs (vendor lists, purpose lists, legitimate-interest lists). Generic
// "settings"/"preferences" wording stays out: that is Manage territory.
var sectionLabels = []string{
	"vendors", "partners", "purposes", "legitimate interest", "legitimate interests",
	"details", "more information", "list of partners",
	"anbieter", "partner", "zwecke", "berechtigtes interesse", "einzelheiten",
	"fournisseurs", "partenaires", "finalités", "intérêt légitime",
	"proveedores", "socios", "propósitos", "finalidades", "interés legítimo",
	"fornitori", "finalità", "interesse legittimo",
	"fornecedores", "parceiros",
	"leveranciers", "doeleinden", "gerechtvaardigd belang",
	"leverantörer", "ändamål",
	"dostawcy", "cele", "uzasadniony interes",
	"поставщики", "цели",
	"ベンダー", "パートナー", "目的",
	"供应商", "合作伙伴", "目的",
}
