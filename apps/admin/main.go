package main

import (
	"log"
	"os"

	"github.com/go-playground/locales/ru"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"

	"github.com/trezcool/shule/core"
	"github.com/trezcool/shule/core/user"
	logsvc "github.com/trezcool/shule/services/logger"
	"github.com/trezcool/shule/storage/jsondb"
	"github.com/trezcool/shule/storage/postgres"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	validate := validator.New()
	_ru := ru.New()
	uni := ut.New(_ru, _ru)
	translator, _ := uni.GetTranslator("ru")
	core.InitValidators(validate, translator)
	user.InitValidators(validate, translator)

	// set up storage
	var db *sqlx.DB
	var usrRepo user.Repository
	if conf.Database.Engine == "postgres" {
		var err error
		db, err = postgres.Open(conf)
		errAndDie(err)
		defer db.Close()
		usrRepo = postgres.NewUserRepository(db)
	} else {
		dbLogger := logsvc.NewRollbarLogger(logger, conf)
		dbLogger.Enable(!conf.Debug)
		jdb, err := jsondb.Open(conf, dbLogger)
		errAndDie(err)
		usrRepo = jdb.Users
	}

	// start CLI
	cli := commandLine{
		db:       db,
		usrSvc:   user.NewService(usrRepo),
		validate: validate,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
