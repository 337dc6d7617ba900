package application

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"

	"github.com/BurntSushi/toml"
	"github.com/gorilla/mux"
	"github.com/iota-uz/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/oneacrefund/fieldops-console/internal/apiclient"
	"github.com/oneacrefund/fieldops-console/pkg/eventbus"
)

// Controller is one mountable route group.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// NavigationItem feeds the SPA's sidebar: the Name is a locale message id
// resolved per request.
type NavigationItem struct {
	Name     string
	Href     string
	Icon     string
	Children []NavigationItem
}

// Application is the composition root every module registers into.
type Application interface {
	API() *apiclient.Client
	EventPublisher() eventbus.EventBus
	Hub() *Hub
	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	Bundle() *i18n.Bundle
	GetSupportedLanguages() []string
	NavItems(localizer *i18n.Localizer) []NavigationItem

	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...interface{})
	RegisterNavItems(items ...NavigationItem)
	RegisterLocaleFiles(fs ...*embed.FS)
	Service(service interface{}) interface{}
	Services() map[reflect.Type]interface{}
}

type ApplicationOptions struct {
	API                *apiclient.Client
	EventBus           eventbus.EventBus
	Hub                *Hub
	Bundle             *i18n.Bundle
	SupportedLanguages []string
}

func LoadBundle() *i18n.Bundle {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)
	return bundle
}

func defaultSupportedLanguageCodes() []string {
	return []string{"en", "fr", "sw"}
}

func New(opts *ApplicationOptions) Application {
	supportedLanguages := opts.SupportedLanguages
	if len(supportedLanguages) == 0 {
		supportedLanguages = defaultSupportedLanguageCodes()
	}

	return &application{
		api:                opts.API,
		eventPublisher:     opts.EventBus,
		hub:                opts.Hub,
		controllers:        make(map[string]Controller),
		services:           make(map[reflect.Type]interface{}),
		bundle:             opts.Bundle,
		supportedLanguages: supportedLanguages,
	}
}

// application with a dynamically extendable service registry
type application struct {
	api                *apiclient.Client
	eventPublisher     eventbus.EventBus
	hub                *Hub
	services           map[reflect.Type]interface{}
	controllers        map[string]Controller
	middleware         []mux.MiddlewareFunc
	bundle             *i18n.Bundle
	navItems           []NavigationItem
	supportedLanguages []string
}

func (app *application) API() *apiclient.Client {
	return app.api
}

func (app *application) EventPublisher() eventbus.EventBus {
	return app.eventPublisher
}

func (app *application) Hub() *Hub {
	return app.hub
}

func (app *application) Middleware() []mux.MiddlewareFunc {
	return app.middleware
}

func (app *application) Controllers() []Controller {
	controllers := make([]Controller, 0, len(app.controllers))
	for _, c := range app.controllers {
		controllers = append(controllers, c)
	}
	return controllers
}

func (app *application) NavItems(localizer *i18n.Localizer) []NavigationItem {
	return translate(localizer, app.navItems)
}

func translate(localizer *i18n.Localizer, items []NavigationItem) []NavigationItem {
	translated := make([]NavigationItem, 0, len(items))
	for _, item := range items {
		translated = append(translated, NavigationItem{
			Name: localizer.MustLocalize(&i18n.LocalizeConfig{
				MessageID: item.Name,
			}),
			Href:     item.Href,
			Children: translate(localizer, item.Children),
			Icon:     item.Icon,
		})
	}
	return translated
}

func (app *application) RegisterControllers(controllers ...Controller) {
	for _, c := range controllers {
		app.controllers[c.Key()] = c
	}
}

func (app *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	app.middleware = append(app.middleware, middleware...)
}

func (app *application) RegisterNavItems(items ...NavigationItem) {
	app.navItems = append(app.navItems, items...)
}

func (app *application) RegisterLocaleFiles(fs ...*embed.FS) {
	for _, localeFs := range fs {
		files, err := listFiles(localeFs, ".")
		if err != nil {
			panic(err)
		}
		for _, file := range files {
			localeFile, err := localeFs.ReadFile(file)
			if err != nil {
				panic(err)
			}
			app.bundle.MustParseMessageFileBytes(localeFile, filepath.Base(file))
		}
	}
}

// RegisterServices registers a new service in the application by its type
func (app *application) RegisterServices(services ...interface{}) {
	for _, service := range services {
		serviceType := reflect.TypeOf(service).Elem()
		app.services[serviceType] = service
	}
}

// Service retrieves a service by its type
func (app *application) Service(service interface{}) interface{} {
	serviceType := reflect.TypeOf(service)
	svc, exists := app.services[serviceType]
	if !exists {
		panic(fmt.Sprintf("service %s not found", serviceType.Name()))
	}
	return svc
}

func (app *application) Services() map[reflect.Type]interface{} {
	return app.services
}

func (app *application) Bundle() *i18n.Bundle {
	return app.bundle
}

func (app *application) GetSupportedLanguages() []string {
	return app.supportedLanguages
}

func listFiles(fsys fs.FS, dir string) ([]string, error) {
	var fileList []string

	err := fs.WalkDir(fsys, dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			fileList = append(fileList, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reading directory %q: %w", dir, err)
	}

	return fileList, nil
}
