// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/veescrow/chain"
	"github.com/vechain/veescrow/log"
	"github.com/vechain/veescrow/thor"
	"github.com/vechain/veescrow/xenv"
)

const (
	insertEventQuery    = "INSERT OR REPLACE INTO event(seq, blockTime, origin, address, topic0, topic1, topic2, topic3, topic4, data) VALUES(?,?,?,?,?,?,?,?,?,?)"
	insertTransferQuery = "INSERT OR REPLACE INTO transfer(seq, blockTime, origin, asset, sender, recipient, amount) VALUES(?,?,?,?,?,?,?)"
)

var logger = log.WithContext("pkg", "logdb")

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	return open(path, "file:"+path+"?_journal_mode=WAL&_busy_timeout=5000")
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// a single writer, and memory databases are per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	logger.Debug("log db opened", "path", path, "sqlite", driverVer)
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewestBlockNumber returns the highest block number having any record.
func (db *LogDB) NewestBlockNumber() (uint32, error) {
	var seq sql.NullInt64
	row := db.db.QueryRow("SELECT MAX(seq) FROM (SELECT MAX(seq) AS seq FROM event UNION SELECT MAX(seq) AS seq FROM transfer)")
	if err := row.Scan(&seq); err != nil {
		return 0, err
	}
	if !seq.Valid {
		return 0, nil
	}
	return sequence(seq.Int64).BlockNumber(), nil
}

// Truncate deletes records of blocks from blockNum on, blockNum included.
func (db *LogDB) Truncate(blockNum uint32) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	for _, table := range []string{"event", "transfer"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE seq >= ?", firstSequence(blockNum)); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func rangeCondition(r *Range, stmt string, args []any) (string, []any) {
	if r == nil {
		return stmt, args
	}
	if r.Unit == Time {
		stmt += " AND blockTime >= ?"
		args = append(args, r.From)
		if r.To >= r.From {
			stmt += " AND blockTime <= ?"
			args = append(args, r.To)
		}
		return stmt, args
	}
	from := uint32(min(r.From, uint64(^uint32(0))))
	stmt += " AND seq >= ?"
	args = append(args, firstSequence(from))
	if r.To >= r.From {
		stmt += " AND seq <= ?"
		args = append(args, lastSequence(uint32(min(r.To, uint64(^uint32(0))))))
	}
	return stmt, args
}

func orderAndLimit(order Order, options *Options, stmt string, args []any) (string, []any) {
	if order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, options.Offset, options.Limit)
	}
	return stmt, args
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT seq, blockTime, origin, address, topic0, topic1, topic2, topic3, topic4, data FROM event WHERE 1"
	if filter == nil {
		return db.queryEvents(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleEventsFilter(filter)

	stmt, args := rangeCondition(filter.Range, query, nil)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Address != nil {
			args = append(args, criteria.Address.Bytes())
			stmt += " AND address = ?"
		}
		for j, topic := range criteria.Topics {
			if topic != nil {
				args = append(args, topic.Bytes())
				stmt += fmt.Sprintf(" AND topic%v = ?", j)
			}
		}
		stmt += ")"
		if i == len(filter.CriteriaSet)-1 {
			stmt += ")"
		}
	}
	stmt, args = orderAndLimit(filter.Order, filter.Options, stmt, args)
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	const query = "SELECT seq, blockTime, origin, asset, sender, recipient, amount FROM transfer WHERE 1"
	if filter == nil {
		return db.queryTransfers(ctx, query+" ORDER BY seq ASC")
	}
	metricsHandleTransfersFilter(filter)

	stmt, args := rangeCondition(filter.Range, query, nil)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Origin != nil {
			args = append(args, criteria.Origin.Bytes())
			stmt += " AND origin = ?"
		}
		if criteria.Asset != nil {
			args = append(args, criteria.Asset.Bytes())
			stmt += " AND asset = ?"
		}
		if criteria.Sender != nil {
			args = append(args, criteria.Sender.Bytes())
			stmt += " AND sender = ?"
		}
		if criteria.Recipient != nil {
			args = append(args, criteria.Recipient.Bytes())
			stmt += " AND recipient = ?"
		}
		stmt += ")"
		if i == len(filter.CriteriaSet)-1 {
			stmt += ")"
		}
	}
	stmt, args = orderAndLimit(filter.Order, filter.Options, stmt, args)
	return db.queryTransfers(ctx, stmt, args...)
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       int64
			blockTime uint64
			origin    []byte
			address   []byte
			topics    [5][]byte
			data      []byte
		)
		if err := rows.Scan(
			&seq,
			&blockTime,
			&origin,
			&address,
			&topics[0],
			&topics[1],
			&topics[2],
			&topics[3],
			&topics[4],
			&data,
		); err != nil {
			return nil, err
		}
		event := &Event{
			BlockNumber: sequence(seq).BlockNumber(),
			Index:       sequence(seq).Index(),
			BlockTime:   blockTime,
			Origin:      thor.BytesToAddress(origin),
			Address:     thor.BytesToAddress(address),
			Data:        data,
		}
		for i, topic := range topics {
			if len(topic) > 0 {
				h := thor.BytesToBytes32(topic)
				event.Topics[i] = &h
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			seq       int64
			blockTime uint64
			origin    []byte
			asset     []byte
			sender    []byte
			recipient []byte
			amount    []byte
		)
		if err := rows.Scan(
			&seq,
			&blockTime,
			&origin,
			&asset,
			&sender,
			&recipient,
			&amount,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			BlockNumber: sequence(seq).BlockNumber(),
			Index:       sequence(seq).Index(),
			BlockTime:   blockTime,
			Origin:      thor.BytesToAddress(origin),
			Asset:       thor.BytesToAddress(asset),
			Sender:      thor.BytesToAddress(sender),
			Recipient:   thor.BytesToAddress(recipient),
			Amount:      new(big.Int).SetBytes(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

func topicValue(topics []thor.Bytes32, i int) []byte {
	if i >= len(topics) {
		return nil
	}
	return topics[i].Bytes()
}

// Prepare starts collecting the records of a block.
func (db *LogDB) Prepare(header *chain.Header) *BlockBatch {
	return &BlockBatch{
		db:     db,
		header: header,
	}
}

type record struct {
	origin   thor.Address
	event    *xenv.Event
	transfer *xenv.Transfer
}

// BlockBatch collects the records of one block and writes them in one transaction.
type BlockBatch struct {
	db        *LogDB
	header    *chain.Header
	events    []record
	transfers []record
}

// Insert adds the records emitted by a call made by origin.
func (bb *BlockBatch) Insert(origin thor.Address, events []*xenv.Event, transfers []*xenv.Transfer) *BlockBatch {
	for _, ev := range events {
		bb.events = append(bb.events, record{origin: origin, event: ev})
	}
	for _, tr := range transfers {
		bb.transfers = append(bb.transfers, record{origin: origin, transfer: tr})
	}
	return bb
}

func (bb *BlockBatch) Len() int {
	return len(bb.events) + len(bb.transfers)
}

func (bb *BlockBatch) Commit() (err error) {
	if bb.Len() == 0 {
		return nil
	}
	insertEvent, err := bb.db.stmtCache.Prepare(insertEventQuery)
	if err != nil {
		return err
	}
	insertTransfer, err := bb.db.stmtCache.Prepare(insertTransferQuery)
	if err != nil {
		return err
	}

	tx, err := bb.db.db.Begin()
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	num, ts := bb.header.Number, bb.header.Timestamp
	for i, r := range bb.events {
		seq, err := newSequence(num, uint32(i))
		if err != nil {
			return err
		}
		ev := r.event
		if _, err := tx.Stmt(insertEvent).Exec(
			seq,
			ts,
			r.origin.Bytes(),
			ev.Address.Bytes(),
			topicValue(ev.Topics, 0),
			topicValue(ev.Topics, 1),
			topicValue(ev.Topics, 2),
			topicValue(ev.Topics, 3),
			topicValue(ev.Topics, 4),
			ev.Data,
		); err != nil {
			return errors.Wrap(err, "insert event")
		}
	}
	for i, r := range bb.transfers {
		seq, err := newSequence(num, uint32(i))
		if err != nil {
			return err
		}
		tr := r.transfer
		if _, err := tx.Stmt(insertTransfer).Exec(
			seq,
			ts,
			r.origin.Bytes(),
			tr.Asset.Bytes(),
			tr.Sender.Bytes(),
			tr.Recipient.Bytes(),
			tr.Amount.Bytes(),
		); err != nil {
			return errors.Wrap(err, "insert transfer")
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	metricWrittenRecords().AddWithLabel(int64(len(bb.events)), map[string]string{"type": "event"})
	metricWrittenRecords().AddWithLabel(int64(len(bb.transfers)), map[string]string{"type": "transfer"})
	return nil
}
