package repository

import "embed"

// Migrations встроенные SQL-миграции репозитория запусков
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir каталог миграций внутри встроенной файловой системы
const MigrationsDir = "migrations"
