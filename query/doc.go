// Package query renders the SQL statements a pgmodel table issues.
//
// A Builder is bound to one table name and its ordered column list. Every
// builder method returns a fresh *Statement holding the final text, the
// positional arguments and whether the statement produces rows; the
// builder itself is never mutated, so one Builder may be shared freely
// between goroutines.
//
// Templates understand the following tokens:
//
//	#{tableName}     table name, replaced everywhere
//	#{columns}       comma separated column list
//	#{values}        $1,$2,... for the bound values
//	#{updateValues}  col1=$1,col2=$2,...
//	#{where}         " WHERE <sql>" or nothing
//	#{idnum}         $N where N is the final argument count
package query
